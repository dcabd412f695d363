package output

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sofmeright/bandbox/src/lint"
)

// IsCI reports whether bandbox runs inside a CI job.
func IsCI() bool {
	return os.Getenv("CI") == "true"
}

// JUnit XML types for CI test reporting.

type JUnitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Errors   int              `xml:"errors,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Errors   int             `xml:"errors,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitFailure `xml:"error,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// BuildJUnit converts results into a JUnit document with one test case per
// rule. Failing rules list every finding in the failure body.
func BuildJUnit(rs lint.Results) JUnitTestSuites {
	suite := JUnitTestSuite{
		Name: "bandbox",
		Time: fmt.Sprintf("%.3f", rs.Elapsed.Seconds()),
	}
	for _, r := range rs.Rules {
		tc := JUnitTestCase{
			Name:      r.RuleID,
			Classname: "bandbox." + r.RuleID,
			Time:      fmt.Sprintf("%.3f", r.Elapsed.Seconds()),
		}
		switch r.Status {
		case lint.StatusFail:
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%d finding(s): %s", len(r.Findings), r.Description),
				Type:    r.Status.String(),
				Body:    strings.Join(r.Paths(), "\n"),
			}
			suite.Failures++
		case lint.StatusErrored:
			msg := "rule errored"
			if r.Err != nil {
				msg = r.Err.Error()
			}
			tc.Error = &JUnitFailure{Message: msg, Type: r.Status.String()}
			suite.Errors++
		}
		suite.Cases = append(suite.Cases, tc)
		suite.Tests++
	}

	return JUnitTestSuites{
		Name:     "bandbox",
		Tests:    suite.Tests,
		Failures: suite.Failures,
		Errors:   suite.Errors,
		Time:     suite.Time,
		Suites:   []JUnitTestSuite{suite},
	}
}

// WriteJUnit writes results as JUnit XML to path, creating parent
// directories.
func WriteJUnit(path string, rs lint.Results) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(BuildJUnit(rs)); err != nil {
		return fmt.Errorf("encoding junit xml: %w", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return err
	}
	return f.Close()
}
