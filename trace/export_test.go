package trace

var CurrentSpanFrom = currentSpanFrom
