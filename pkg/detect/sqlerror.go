package detect

import (
	"fmt"
	"strings"

	"github.com/scandeck/scandeck/pkg/finding"
	"github.com/scandeck/scandeck/pkg/probe"
)

// sqlErrorSignatures is the fixed list of database error substrings covering
// MySQL, PostgreSQL, MSSQL, Oracle, and ODBC stacks. Matching is
// case-sensitive: these strings appear verbatim in driver output.
var sqlErrorSignatures = []string{
	"You have an error in your SQL syntax",
	"Warning: mysql_",
	"Warning: mysqli_",
	"MySqlException",
	"valid MySQL result",
	"PostgreSQL ERROR",
	"pg_query()",
	"syntax error at or near",
	"Unclosed quotation mark after the character string",
	"Microsoft SQL Native Client error",
	"Incorrect syntax near",
	"ODBC SQL Server Driver",
	"ODBC Driver",
	"ORA-00933",
	"ORA-01756",
	"Oracle error",
	"quoted string not properly terminated",
	"SQLSTATE[",
}

// MatchSQLError reports the first database error signature found in body.
func MatchSQLError(body string) (string, bool) {
	for _, sig := range sqlErrorSignatures {
		if strings.Contains(body, sig) {
			return sig, true
		}
	}
	return "", false
}

// SQLErrorDetector flags responses containing database error signatures.
type SQLErrorDetector struct{}

// Detect returns a high-severity SQL injection finding when the captured
// body contains a database error signature, recording the pattern that
// matched. Nil means no signal.
func (SQLErrorDetector) Detect(capture *probe.Capture, param, payload string) *finding.Finding {
	if capture == nil {
		return nil
	}
	sig, ok := MatchSQLError(capture.Body)
	if !ok {
		return nil
	}
	f := finding.New(finding.SQLInjection, param, finding.High,
		fmt.Sprintf("database error signature %q in response", sig), payload)
	return &f
}
