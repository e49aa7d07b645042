// Package traderr defines the closed error taxonomy for trading-platform
// calls and the classifier that maps raw SDK failures into it.
//
// Every failure that crosses the boundary of a platform service is
// classified into exactly one [Kind] before it surfaces to callers. The
// taxonomy is closed: consumers can switch on [KindOf] without defending
// against unknown error shapes.
//
// # Classification
//
// Trading platforms expose failures as free-form message strings rather
// than stable codes, so [PlatformClassifier] pattern-matches on error
// content:
//
//	classifier := traderr.NewPlatformClassifier()
//
//	err := classifier.Classify(rawErr, traderr.Context{
//	    Service:   "okx",
//	    Operation: "place_order",
//	    Symbol:    "BTC-USDT",
//	})
//	if traderr.IsKind(err, traderr.KindRateLimited) {
//	    // back off
//	}
//
// Classification is total. SDK-origin failures that match no pattern map
// to [KindUnknownAPI]; failures from inside the process map to
// [KindInternal]. Errors that are already classified pass through with
// their kind preserved.
//
// # Retryability
//
// The taxonomy itself carries no retry policy. [Transient] returns the
// default set of kinds worth retrying; the resilience package consumes
// it when building retry policies.
package traderr
