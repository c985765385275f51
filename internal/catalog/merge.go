package catalog

// Merge folds another catalog into this one. Shows upsert by UUID with
// their episode lists unioned, so entities outside a filtered run's scope
// survive the merge. Hosts and loose resources upsert by their own keys.
func (c *Catalog) Merge(other *Catalog) error {
	for _, host := range other.ListHosts(nil) {
		if err := c.AddHost(host); err != nil {
			return err
		}
	}

	for _, incoming := range other.ListShows(nil) {
		existing, ok := c.GetShow(incoming.UUID)
		if !ok {
			if err := c.AddShow(incoming); err != nil {
				return err
			}
			continue
		}

		existing.Title = incoming.Title
		existing.URL = incoming.URL
		existing.Image = incoming.Image
		existing.Description = incoming.Description
		existing.Hosts = incoming.Hosts
		existing.Type = incoming.Type
		if incoming.Metadata != nil {
			existing.Metadata = incoming.Metadata
		}
		if incoming.LastUpdated != nil {
			existing.LastUpdated = incoming.LastUpdated
		}
		if incoming.Resource != nil {
			existing.Resource = incoming.Resource
		}
		for _, episode := range incoming.Episodes {
			episode.ShowUUID = existing.UUID
			if !existing.AppendEpisode(episode) {
				// Already linked: the incoming record replaces the stored
				// one in place so the list and map stay in step.
				for i, linked := range existing.Episodes {
					if linked != nil && linked.UUID == episode.UUID {
						existing.Episodes[i] = episode
					}
				}
				existing.SortEpisodes()
			}
			if err := c.AddEpisode(episode); err != nil {
				return err
			}
		}
		// Re-register so embedded hosts and the resource cascade.
		if err := c.AddShow(existing); err != nil {
			return err
		}
	}

	for _, resource := range other.ListResources(nil) {
		if err := c.AddResource(resource); err != nil {
			return err
		}
	}
	return nil
}
