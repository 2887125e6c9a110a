package slideshow

// Key names understood by HandleKey.
const (
	KeyEscape     = "Escape"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// HandleKey applies a key press. It reports whether the key was consumed.
func (c *Controller) HandleKey(key string) bool {
	if !c.IsOpen() {
		return false
	}
	switch key {
	case KeyEscape:
		c.Close()
	case KeyArrowRight:
		c.Next()
	case KeyArrowLeft:
		c.Prev()
	default:
		return false
	}
	return true
}

// HandleClick closes the modal when the backdrop or the image was clicked.
func (c *Controller) HandleClick(target ClickTarget) bool {
	if !c.IsOpen() {
		return false
	}
	switch target {
	case ClickBackdrop, ClickImage:
		c.Close()
		return true
	default:
		return false
	}
}

// HandleSwipe navigates on a mostly horizontal drag longer than
// SwipeThreshold: leftwards shows the next item, rightwards the previous.
func (c *Controller) HandleSwipe(dx, dy int) bool {
	if !c.IsOpen() {
		return false
	}
	if abs(dx) <= SwipeThreshold || abs(dx) <= abs(dy) {
		return false
	}
	if dx < 0 {
		c.Next()
	} else {
		c.Prev()
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
