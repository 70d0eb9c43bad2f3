// Package corpus reads qt3tests conformance files and keeps a local checkout
// of the corpus repository fresh.
package corpus

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/noir-xpath/testgen/types"
)

// RepoURL is the upstream home of the W3C qt3tests corpus.
const RepoURL = "https://github.com/w3c/qt3tests.git"

type xmlDependency struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

type xmlResult struct {
	AssertEq          *string  `xml:"assert-eq"`
	AssertStringValue *string  `xml:"assert-string-value"`
	AssertTrue        *xmlFlag `xml:"assert-true"`
	AssertFalse       *xmlFlag `xml:"assert-false"`
	Error             *xmlFlag `xml:"error"`
	AllOf             *xmlFlag `xml:"all-of"`
	AnyOf             *xmlFlag `xml:"any-of"`
}

type xmlFlag struct{}

type xmlTestCase struct {
	Name         string          `xml:"name,attr"`
	Description  string          `xml:"description"`
	Test         string          `xml:"test"`
	Dependencies []xmlDependency `xml:"dependency"`
	Result       xmlResult       `xml:"result"`
}

type xmlTestSet struct {
	Name         string          `xml:"name,attr"`
	Dependencies []xmlDependency `xml:"dependency"`
	TestCases    []xmlTestCase   `xml:"test-case"`
}

// ReadFile decodes one qt3tests test-set file into test cases. Set-level
// dependencies are folded into every case. Cases whose result form cannot be
// expressed as a single asserted value (error codes, all-of/any-of
// combinators) come back with ResultUnsupported so callers can count them.
func ReadFile(path string) ([]types.TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}

	var set xmlTestSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse corpus file %s: %w", filepath.Base(path), err)
	}

	cases := make([]types.TestCase, 0, len(set.TestCases))
	for _, tc := range set.TestCases {
		result, expected := classifyResult(tc.Result)

		deps := make([]types.Dependency, 0, len(set.Dependencies)+len(tc.Dependencies))
		for _, d := range set.Dependencies {
			deps = append(deps, types.Dependency{Type: d.Type, Value: d.Value})
		}
		for _, d := range tc.Dependencies {
			deps = append(deps, types.Dependency{Type: d.Type, Value: d.Value})
		}

		cases = append(cases, types.TestCase{
			Name:         tc.Name,
			Description:  tc.Description,
			Expression:   tc.Test,
			Expected:     expected,
			Result:       result,
			Dependencies: deps,
		})
	}
	return cases, nil
}

func classifyResult(r xmlResult) (types.ResultKind, string) {
	switch {
	case r.AllOf != nil || r.AnyOf != nil:
		return types.ResultUnsupported, ""
	case r.AssertEq != nil:
		return types.ResultEquals, *r.AssertEq
	case r.AssertStringValue != nil:
		// A string-value assertion on an atomic result is an equality check.
		return types.ResultEquals, *r.AssertStringValue
	case r.AssertTrue != nil:
		return types.ResultTrue, ""
	case r.AssertFalse != nil:
		return types.ResultFalse, ""
	case r.Error != nil:
		return types.ResultError, ""
	}
	return types.ResultUnsupported, ""
}

// Convertible filters out the cases translation cannot use: expected errors
// and unsupported result forms.
func Convertible(cases []types.TestCase) []types.TestCase {
	out := make([]types.TestCase, 0, len(cases))
	for _, tc := range cases {
		if tc.Result == types.ResultError || tc.Result == types.ResultUnsupported {
			continue
		}
		out = append(out, tc)
	}
	return out
}

// Refresh clones the corpus repository into dir when absent, otherwise pulls
// the latest revision. Already-up-to-date is not an error.
func Refresh(dir string, logger *zap.Logger) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); os.IsNotExist(err) {
		logger.Info("cloning qt3tests corpus", zap.String("dir", dir))
		_, err := git.PlainClone(dir, false, &git.CloneOptions{
			URL:   RepoURL,
			Depth: 1,
		})
		if err != nil {
			return fmt.Errorf("git clone %s: %w", RepoURL, err)
		}
		return nil
	}

	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("open corpus checkout: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return err
	}
	logger.Info("updating qt3tests corpus", zap.String("dir", dir))
	if err := worktree.Pull(&git.PullOptions{Depth: 1}); err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			logger.Debug("corpus already up to date")
			return nil
		}
		return fmt.Errorf("git pull: %w", err)
	}
	return nil
}
