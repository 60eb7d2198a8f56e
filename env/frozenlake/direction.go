package frozenlake

type direction string

const (
	left  direction = "left"
	down  direction = "down"
	right direction = "right"
	up    direction = "up"
)

var directions = []string{string(left), string(right), string(down), string(up)}

func parseDirection(s string) (direction, bool) {
	switch d := direction(s); d {
	case left, down, right, up:
		return d, true
	}
	return "", false
}

func (d direction) dx() int {
	switch d {
	case left:
		return -1
	case right:
		return 1
	}
	return 0
}

func (d direction) dy() int {
	switch d {
	case up:
		return -1
	case down:
		return 1
	}
	return 0
}

// turnLeft and turnRight are the perpendicular slips.
func (d direction) turnLeft() direction {
	switch d {
	case left:
		return down
	case down:
		return right
	case right:
		return up
	}
	return left
}

func (d direction) turnRight() direction {
	switch d {
	case left:
		return up
	case up:
		return right
	case right:
		return down
	}
	return left
}
