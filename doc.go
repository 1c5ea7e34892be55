// Package casjobs is a Go client for CasJobs SQL job services such as
// MAST CasJobs at STScI and the SDSS SkyServer CasJobs.
//
// The client authenticates with a username/password pair or a numeric
// WSID, submits quick (synchronous) and output (asynchronous) jobs, and
// converts the service's delimited-text and FITS responses into typed
// in-memory tables.
//
// Credentials may be passed explicitly in the Config or sourced from the
// environment:
//
//	CASJOBS_USERID  CasJobs user name
//	CASJOBS_WSID    numeric web-service identifier
//	CASJOBS_PW      password
//
// An explicit Username takes precedence over an explicit WSID, which
// takes precedence over the environment. A password is always required.
//
// Basic usage:
//
//	cj, err := casjobs.New(ctx, &casjobs.Config{Username: "observer"})
//	if err != nil {
//		return err
//	}
//	tab, err := cj.GetTable(ctx, "mysources", "FITS")
//
// Retrieval tries the cheapest path first: a quick job returning inline
// CSV, then (for FastTable, MAST only) an accelerated bulk endpoint, and
// finally an asynchronous output job that is polled to completion and
// downloaded in FITS or CSV format.
package casjobs
