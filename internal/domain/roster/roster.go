// Package roster implements the ordered, duplicate-free participant list
// kept on every activity.
package roster

// IndexOf returns the position of email in list, or -1.
func IndexOf(list []string, email string) int {
	for i, p := range list {
		if p == email {
			return i
		}
	}
	return -1
}

// Contains reports whether email is on the list.
func Contains(list []string, email string) bool {
	return IndexOf(list, email) >= 0
}

// Add appends email at the end of list. It returns the list unchanged and
// false if email is already present.
func Add(list []string, email string) ([]string, bool) {
	if Contains(list, email) {
		return list, false
	}
	return append(list, email), true
}

// Remove drops the single occurrence of email and keeps the order of the
// rest. The result never shares a backing array with list, so snapshots
// taken earlier stay intact. It returns false if email is absent.
func Remove(list []string, email string) ([]string, bool) {
	i := IndexOf(list, email)
	if i < 0 {
		return list, false
	}
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out, true
}

// Duplicates returns every email that appears more than once, in first-seen order.
func Duplicates(list []string) []string {
	seen := make(map[string]int, len(list))
	var dups []string
	for _, p := range list {
		seen[p]++
		if seen[p] == 2 {
			dups = append(dups, p)
		}
	}
	return dups
}
