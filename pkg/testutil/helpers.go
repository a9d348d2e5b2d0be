// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/rural-credit/internal/analysis"
)

// FindContract finds a contract result by name.
// Returns nil if no contract has that name.
func FindContract(results *analysis.Results, name string) *analysis.ContractResult {
	for i := range results.Contracts {
		if results.Contracts[i].Name == name {
			return &results.Contracts[i]
		}
	}
	return nil
}

// FindChain finds a chain result by name.
func FindChain(results *analysis.Results, name string) *analysis.ChainResult {
	for i := range results.Chains {
		if results.Chains[i].Name == name {
			return &results.Chains[i]
		}
	}
	return nil
}
