package utils

// IsCPF reports whether s is a CPF document in the canonical
// formatted shape XXX.XXX.XXX-XX.  Only the shape is checked; the
// check digits are the document issuer's problem, not ours.
func IsCPF(s string) bool {
	if len(s) != 14 {
		return false
	}
	for i, r := range s {
		switch i {
		case 3, 7:
			if r != '.' {
				return false
			}
		case 11:
			if r != '-' {
				return false
			}
		default:
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
