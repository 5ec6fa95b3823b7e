package models

// CanTransition reports whether a status may move from one value to another in
// the given lifecycle. Staying put, one step forward and one step back are legal.
// Unknown values never transition.
func CanTransition[S ~string](lifecycle []S, from, to S) bool {
	fi, ti := indexOf(lifecycle, from), indexOf(lifecycle, to)
	if fi < 0 || ti < 0 {
		return false
	}
	d := ti - fi
	return d >= -1 && d <= 1
}

func indexOf[S ~string](lifecycle []S, v S) int {
	for i, s := range lifecycle {
		if s == v {
			return i
		}
	}
	return -1
}

// Contains reports whether v is a member of the enum.
func Contains[S ~string](values []S, v S) bool {
	return indexOf(values, v) >= 0
}
