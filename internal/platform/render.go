package platform

import "strings"

// Render substitutes detected platform values into a user-supplied
// asset-name pattern. Supported variables: {{os}}, {{arch}}, {{Os}},
// {{OS}}, {{Arch}}, {{ARCH}}, and {{archRaw}}. Unknown variables are
// left untouched so the caller can spot a typo in the resulting name.
func Render(pattern string, info *Info) string {
	r := strings.NewReplacer(
		"{{os}}", info.OS,
		"{{Os}}", titleCase(info.OS),
		"{{OS}}", strings.ToUpper(info.OS),
		"{{arch}}", info.Arch,
		"{{Arch}}", titleCase(info.Arch),
		"{{ARCH}}", strings.ToUpper(info.Arch),
		"{{archRaw}}", info.ArchRaw,
	)
	return r.Replace(pattern)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
