// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import "sync"

// Reporter is used to accumulate and report errors during compilation.
// Stages decide to report an error but continue processing rather than fail
// outright. The final error set is then shown to the user in one report.
type Reporter interface {
	// Report adds the given record to the set. If this method returns an error
	// then the given error is considered fatal for the reporting stage.
	Report(Exception) Exception
	// Warn adds a record that never fails the stage.
	Warn(Exception)
	// Reported returns the set of accumulated exceptions.
	Reported() []Exception
	// Warnings returns the set of accumulated warnings.
	Warnings() []Exception
}

// NewReporter returns a concurrent-safe implementation of Reporter.
func NewReporter(nonFatal []string) Reporter {
	nf := make(map[string]bool, len(defaultNonFatal))
	for k := range defaultNonFatal {
		nf[k] = true
	}
	for _, k := range nonFatal {
		nf[k] = true
	}
	return &reporterLock{
		Reporter: &reporter{
			nonFatal: nf,
		},
		lock: &sync.Mutex{},
	}
}

type reporter struct {
	reported []Exception
	warnings []Exception
	nonFatal map[string]bool
}

func (r *reporter) Report(e Exception) Exception {
	r.reported = append(r.reported, e)
	if r.nonFatal[e.Code()] {
		return nil
	}
	return e
}

func (r *reporter) Warn(e Exception) {
	r.warnings = append(r.warnings, e)
}

func (r *reporter) Reported() []Exception {
	return r.reported
}

func (r *reporter) Warnings() []Exception {
	return r.warnings
}

type reporterLock struct {
	Reporter
	lock sync.Locker
}

func (r *reporterLock) Report(e Exception) Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Report(e)
}

func (r *reporterLock) Warn(e Exception) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Reporter.Warn(e)
}

func (r *reporterLock) Reported() []Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Exception(nil), r.Reporter.Reported()...)
}

func (r *reporterLock) Warnings() []Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Exception(nil), r.Reporter.Warnings()...)
}
