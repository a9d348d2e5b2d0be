package testutil

import (
	"testing"

	"github.com/iwvelando/rural-credit/internal/analysis"
)

func TestFind(t *testing.T) {
	results := &analysis.Results{
		Contracts: []analysis.ContractResult{{Name: "a"}, {Name: "b"}},
		Chains:    []analysis.ChainResult{{Name: "c"}},
	}

	if got := FindContract(results, "b"); got == nil || got != &results.Contracts[1] {
		t.Errorf("FindContract(b) = %v, expected the second contract", got)
	}
	if got := FindContract(results, "missing"); got != nil {
		t.Errorf("FindContract(missing) = %v, expected nil", got)
	}
	if got := FindChain(results, "c"); got == nil {
		t.Errorf("FindChain(c) returned nil")
	}
	if got := FindChain(&analysis.Results{}, "c"); got != nil {
		t.Errorf("FindChain on empty results = %v, expected nil", got)
	}
}
