// Package forge abstracts the release APIs of hosted git platforms.
//
// A Forge resolves the downloadable assets of a project release on a
// specific platform (GitHub, GitLab, or Forgejo). Every backend follows
// the same two-step protocol: build the platform's release-info URL,
// then fetch it with the platform's authentication scheme and translate
// the platform-specific JSON schema into forge-agnostic Asset values.
// Only the URL shape, auth header, and response schema vary per backend.
//
// Forge instances are immutable after construction and safe to share
// across goroutines. They hold no HTTP state of their own; the caller
// supplies a reusable *http.Client and owns its timeout and pooling
// configuration. A single FetchAssets call issues exactly one request,
// with no caching and no retries. Retry policy, if any, belongs to the
// caller and should wrap the whole call.
//
// # Usage
//
//	f, err := forge.New(forge.KindForgejo, forge.Options{
//	    Project: "houseabsolute/ubi",
//	    Token:   forge.Token(token),
//	})
//	if err != nil {
//	    return err
//	}
//	assets, err := f.FetchAssets(ctx, http.DefaultClient)
//
// # Errors
//
// Failures are classified by four sentinel errors, matched with
// errors.Is: ErrInvalidProjectName, ErrInvalidToken, ErrRequestFailed,
// and ErrDecodeFailed. All failures are terminal for the lookup in
// progress; the Forge instance remains reusable afterwards.
package forge
