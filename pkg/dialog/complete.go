package dialog

import "github.com/hvacjoy/joyline/pkg/domain/model"

// Complete reports whether a booking conversation has captured everything
// dispatch needs: full name, callback number, full service address, a pricing
// disclosure, and at least one scheduling preference. It is derived fresh
// each turn, never stored.
func Complete(s model.Slots) bool {
	return s.FullName != nil &&
		s.CallbackNumber != nil &&
		s.ServiceAddress.Complete() &&
		s.PricingDisclosed &&
		s.SchedulingSet()
}
