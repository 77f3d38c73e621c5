package service

import "errors"

// ErrClientClosed indicates the client has been closed.
var ErrClientClosed = errors.New("talentwatch: client is closed")

// ErrNoDatabase indicates no database backend was configured.
var ErrNoDatabase = errors.New("talentwatch: no database configured")

// ErrNoSource indicates no scrape source was configured for an operation
// that needs one.
var ErrNoSource = errors.New("talentwatch: no scrape source configured")

// ErrNoTitleParser indicates raw video titles were supplied without a
// parser to extract speakers from them.
var ErrNoTitleParser = errors.New("talentwatch: no title parser configured")

// ErrRunInProgress indicates a reconciliation run is already executing for
// the source. Runs hold exclusive access to the batch ledger, so a second
// run against the same source must wait for the first to finish.
var ErrRunInProgress = errors.New("talentwatch: run already in progress")
