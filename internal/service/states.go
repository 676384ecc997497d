package service

import (
	"sort"
	"strings"
)

const RegionAll = "All"

var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming",
}

var regions = map[string][]string{
	"Northeast": {"CT", "DE", "ME", "MD", "MA", "NH", "NJ", "NY", "PA", "RI", "VT"},
	"Southeast": {"AL", "AR", "FL", "GA", "KY", "LA", "MS", "NC", "SC", "TN", "VA", "WV"},
	"Midwest":   {"IL", "IN", "IA", "KS", "MI", "MN", "MO", "NE", "ND", "OH", "SD", "WI"},
	"Southwest": {"AZ", "NM", "OK", "TX"},
	"West":      {"AK", "CA", "CO", "HI", "ID", "MT", "NV", "OR", "UT", "WA", "WY"},
}

// RegionNames lists regions in menu order.
var RegionNames = []string{"Northeast", "Southeast", "Midwest", "Southwest", "West"}

// StateName converts a two-letter code to its full name. Unknown codes pass through.
func StateName(code string) string {
	if name, ok := stateNames[code]; ok {
		return name
	}
	return code
}

func StateCodes() []string {
	out := make([]string, 0, len(stateNames))
	for code := range stateNames {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func StateNames() map[string]string {
	out := make(map[string]string, len(stateNames))
	for k, v := range stateNames {
		out[k] = v
	}
	return out
}

// RegionStates returns a copy of the member states of region, or nil for
// "All" and unknown regions.
func RegionStates(region string) []string {
	states, ok := regions[region]
	if !ok {
		return nil
	}
	return append([]string(nil), states...)
}

// RegionForState returns the region containing code, or RegionAll.
func RegionForState(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return RegionAll
	}
	matched := RegionAll
	for _, region := range RegionNames {
		for _, s := range regions[region] {
			if s == code {
				matched = region
			}
		}
	}
	return matched
}

func Regions() map[string][]string {
	out := make(map[string][]string, len(regions))
	for k := range regions {
		out[k] = RegionStates(k)
	}
	return out
}
