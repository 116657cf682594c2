package signer

import (
	"runtime"
	"sync"

	"github.com/Bulk-trade/bulk-keychain/pkg/transaction"
)

// parallelThreshold is the batch size above which SignAll fans out across
// goroutines. Below it, the scheduling overhead costs more than it saves.
const parallelThreshold = 10

// BatchResult is one slot of a SignAll batch: either an envelope or that
// item's error. Slots are index-aligned with the input.
type BatchResult struct {
	Signed *transaction.Signed
	Err    error
}

// SignAll signs each item as its own independent transaction, so the
// exchange confirms or rejects each one separately. Nonces are contiguous
// from the base (opts.Nonce if set, otherwise one block reserved from the
// signer's NonceManager, or without one a single wall-clock read for the
// whole batch). A failing item fails only its own slot.
func (s *Signer) SignAll(items []transaction.OrderItem, opts *Options) []BatchResult {
	results := make([]BatchResult, len(items))
	if len(items) == 0 {
		return results
	}
	base := s.resolveBaseNonce(opts, len(items))

	sign := func(i int) {
		tx, err := s.signWithNonce(transaction.OrderBatch{items[i]}, base+uint64(i), opts)
		results[i] = BatchResult{Signed: tx, Err: err}
	}

	if len(items) <= parallelThreshold {
		for i := range items {
			sign(i)
		}
		return results
	}

	// Embarrassingly parallel: inputs are read-only, each worker writes only
	// its own slot.
	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.NumCPU())
	for i := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			sign(i)
			<-sem
		}(i)
	}
	wg.Wait()
	return results
}

// SignAllIntents parses camelCase intents and signs each independently.
// Parse failures occupy their slot like signing failures.
func (s *Signer) SignAllIntents(intents []transaction.Intent, opts *Options) []BatchResult {
	items := make([]transaction.OrderItem, len(intents))
	parseErrs := make([]error, len(intents))
	for i, in := range intents {
		items[i], parseErrs[i] = transaction.ParseIntent(in)
	}

	results := make([]BatchResult, len(intents))
	valid := make([]transaction.OrderItem, 0, len(intents))
	validIdx := make([]int, 0, len(intents))
	for i := range items {
		if parseErrs[i] != nil {
			results[i] = BatchResult{Err: parseErrs[i]}
			continue
		}
		valid = append(valid, items[i])
		validIdx = append(validIdx, i)
	}

	for j, r := range s.SignAll(valid, opts) {
		results[validIdx[j]] = r
	}
	return results
}

func (s *Signer) resolveBaseNonce(opts *Options, n int) uint64 {
	if opts != nil && opts.Nonce != nil {
		return *opts.Nonce
	}
	if s.nonces != nil {
		return s.nonces.Reserve(n)
	}
	return CurrentTimestampMillis()
}
