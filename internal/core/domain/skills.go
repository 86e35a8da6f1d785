package domain

import "slices"

// Specialties is the vocabulary agronomists can tag themselves with.
var Specialties = []string{"corn", "barley", "wheat"}

// Regions lists the Canadian provinces and territories an agronomist can serve.
var Regions = []string{"ON", "BC", "QC", "AB", "NS", "NB", "NL", "PE", "MB", "SK", "YT", "NT", "NU"}

func IsSpecialty(s string) bool { return slices.Contains(Specialties, s) }

func IsRegion(s string) bool { return slices.Contains(Regions, s) }

// AddToSet appends every value of add not already in set. Existing members keep
// their position; new members are appended in input order, once.
func AddToSet(set []string, add ...string) []string {
	for _, v := range add {
		if !slices.Contains(set, v) {
			set = append(set, v)
		}
	}
	return set
}

// RemoveFromSet drops v from set. Removing an absent value is a no-op.
func RemoveFromSet(set []string, v string) []string {
	idx := slices.Index(set, v)
	if idx < 0 {
		return set
	}
	return slices.Delete(set, idx, idx+1)
}
