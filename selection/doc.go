// Package selection picks the best package version for a request.
//
// # Buckets
//
// Prerelease and nightly are independent axes, so every candidate version
// falls in exactly one of four buckets:
//
//	                 no build (not nightly)   build (nightly)
//	no prerelease    Release                  ReleaseNightly
//	prerelease       Prerelease               PrereleaseNightly
//
// A request asks for exactly one bucket through its Prerelease and Nightly
// flags. Selection never widens the bucket: asking for releases never yields
// a nightly, even when the nightly is newer.
//
// # Target versions
//
// The target narrows the candidate set before the maximum is taken:
//
//   - No target ("latest"): every candidate in the bucket competes.
//   - A release target (e.g. 12.1.0): only candidates with the same
//     major.minor.patch compete.
//   - A partial target (e.g. 12 or 12.1): candidates whose leading
//     components match compete.
//   - A prerelease target (e.g. 12.1.0-rc.1): the target itself is returned,
//     unless nightlies are requested, in which case the newest nightly of that
//     exact prerelease line is returned.
//   - A nightly target (any build tag): the target itself is returned. A
//     specific nightly is authoritative and is not looked up.
package selection
