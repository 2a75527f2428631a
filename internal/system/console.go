package system

// Console hands the text console over to the framebuffer and back.
type Console struct {
	Logger logger
}

// Acquire switches the VT to graphics mode and hides the cursor. Failures are logged;
// the display still works, only with the console showing through.
func (c Console) Acquire() {
	c.logResult(SetGraphicsMode(), "KD_GRAPHICS set", "KD_GRAPHICS failed")
	c.logResult(HideCursor(), "cursor hidden", "hide cursor failed")
}

// Release undoes Acquire.
func (c Console) Release() {
	c.logResult(ShowCursor(), "cursor shown", "show cursor failed")
	c.logResult(RestoreTextMode(), "KD_TEXT set", "KD_TEXT failed")
}

func (c Console) logResult(err error, ok, failed string) {
	if c.Logger == nil {
		return
	}
	if err != nil {
		c.Logger.Errorf("tty", "%s: %v", failed, err)
		return
	}
	c.Logger.Infof("tty", "%s", ok)
}
