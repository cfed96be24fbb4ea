package playback

import "context"

// ToggleControlPanel shows a hidden panel and hides a visible one.
func (c *Controller) ToggleControlPanel() error {
	return c.exec(func() {
		if c.state.ControlPanelVisible {
			c.hideControlPanel()
		} else {
			c.showControlPanel()
		}
	})
}

// ShowControlPanel reveals the panel and arms the auto-hide timer.
func (c *Controller) ShowControlPanel() error {
	return c.exec(c.showControlPanel)
}

// HideControlPanel hides the panel.
func (c *Controller) HideControlPanel() error {
	return c.exec(c.hideControlPanel)
}

// ToggleResolutionPanel does nothing unless there is more than one option to choose from.
func (c *Controller) ToggleResolutionPanel() error {
	return c.exec(func() {
		if len(c.state.Ladder) <= 1 {
			return
		}
		c.state.ResolutionPanelVisible = !c.state.ResolutionPanelVisible
		c.restartAutoHide()
	})
}

func (c *Controller) showControlPanel() {
	c.state.ControlPanelVisible = true
	c.restartAutoHide()
}

func (c *Controller) hideControlPanel() {
	c.state.ControlPanelVisible = false
	c.cancelAutoHide()
}

// restartAutoHide replaces any pending timer. When it fires the panel hides only if
// the video is still playing.
func (c *Controller) restartAutoHide() {
	c.cancelAutoHide()
	if c.opts.AutoHide <= 0 {
		return
	}

	gen, epoch := c.timerGen, c.epoch
	c.timer = c.opts.Clock.AfterFunc(c.opts.AutoHide, func() {
		c.post(context.Background(), epoch, func() {
			if gen != c.timerGen {
				return
			}
			c.timer = nil
			if c.state.IsPlaying() {
				c.state.ControlPanelVisible = false
				c.state.ResolutionPanelVisible = false
			}
		})
	})
}

func (c *Controller) cancelAutoHide() {
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
