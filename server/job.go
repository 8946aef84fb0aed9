package main

// runJob sweeps expired records out of the link cache. Scheduled hourly via
// the cluster job so only one instance runs the sweep.
func (p *Plugin) runJob() {
	if p.linkCache == nil {
		return
	}

	removed := p.linkCache.Cleanup()
	if removed > 0 {
		p.API.LogInfo("Swept expired link records", "removed", removed)
	} else {
		p.API.LogDebug("Link record sweep found nothing to remove")
	}
}
