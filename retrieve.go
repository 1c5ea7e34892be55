package casjobs

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// retrievalState tracks where a table fetch is in the tier sequence,
// mostly for diagnostics.
type retrievalState int

const (
	stateNotFound retrievalState = iota
	stateQuick
	stateFast
	stateQueued
	stateDone
	stateFailed
)

func (rs retrievalState) String() string {
	return [...]string{"NOT_FOUND", "QUICK", "FAST", "QUEUED", "DONE", "FAILED"}[rs]
}

// probeTable confirms the table exists with a zero-row structural query.
// Any failure is reported as table-not-found; the underlying transport
// error is logged, not propagated.
func (cj *CasJobs) probeTable(ctx context.Context, table, sqlName string) error {
	if _, err := cj.QuickRaw(ctx, fmt.Sprintf("select top 0 * from %s", sqlName), &QuickOptions{Context: "MYDB"}); err != nil {
		logger.Debugf("probe query for %v failed: %v, state %v", table, err, stateNotFound)
		return tableNotFoundError(table)
	}
	return nil
}

// GetTable fetches a MyDB table. The quick path is always tried first;
// the server enforces its own size limit, so a quick failure is the size
// signal and the fetch falls back to an asynchronous output job in the
// requested format ("FITS" or "CSV"; anything else is coerced to FITS).
func (cj *CasJobs) GetTable(ctx context.Context, table, format string) (*Table, error) {
	if err := cj.probeTable(ctx, table, table); err != nil {
		return nil, err
	}
	tab, err := cj.Quick(ctx, fmt.Sprintf("select * from %s", table), &QuickOptions{Context: "MYDB"})
	if err == nil {
		return tab, nil
	}
	// Quick rejects result sets over its size limit; the failure is the
	// signal to go through the output queue.
	logger.Debugf("quick retrieval of %v failed (%v), state %v -> %v", table, err, stateQuick, stateQueued)

	format = strings.ToUpper(format)
	if format != "FITS" && format != "CSV" {
		format = "FITS"
	}
	start := time.Now()
	jobID, err := cj.jobs.requestOutput(ctx, table, format)
	if err != nil {
		return nil, err
	}
	status, err := cj.monitorJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !status.isSuccess() {
		logger.Debugf("output job %v for %v reached %v, state %v", jobID, table, status, stateFailed)
		return nil, &CasJobsError{
			Number:      ErrCodeOutputJobFailed,
			Message:     "output request failed with status %v",
			MessageArgs: []interface{}{status},
			TableName:   table,
			JobID:       jobID,
		}
	}
	info, err := cj.jobs.jobInfo(ctx, jobID)
	if err != nil {
		return nil, err
	}
	tab, err = cj.downloadOutput(ctx, info.OutputLoc, format)
	if err != nil {
		return nil, err
	}
	logger.Debugf("retrieved %v row %v table %v in %v, state %v", tab.NumRows(), format, table, time.Since(start), stateDone)
	return tab, nil
}

// FastTable fetches a potentially large MyDB table through the
// accelerated bulk endpoint without going through the output queue.
// This only works for MAST CasJobs, and only for clients constructed
// with a username, since the endpoint is keyed by username rather than
// WSID.
func (cj *CasJobs) FastTable(ctx context.Context, table string) (*Table, error) {
	if cj.cfg.FastURL == "" {
		return nil, ErrMissingFastURL
	}
	if cj.cfg.Username == "" {
		return nil, ErrUsernameRequired
	}
	if err := cj.probeTable(ctx, table, fmt.Sprintf("[%s]", table)); err != nil {
		return nil, err
	}
	logger.Debugf("fetching %v through the accelerated endpoint, state %v", table, stateFast)
	start := time.Now()
	data := url.Values{}
	data.Set("userid", cj.cfg.Username)
	data.Set("pw", cj.cfg.Password)
	data.Set("table", table)
	body, status, err := cj.rest.postForm(ctx, cj.cfg.FastURL, data)
	if err != nil {
		return nil, err
	}
	if status == 404 {
		return nil, tableNotFoundError(table)
	}
	if status < 200 || status >= 300 {
		return nil, transportError(status, cj.cfg.FastURL)
	}
	logger.Debugf("retrieved %.2fMB table MyDB.%v in %v", float64(len(body))/1e6, table, time.Since(start))
	return decodeTabResult(string(body))
}

// monitorJob polls the job status until it reaches a terminal state. No
// timeout is imposed here; bound the wait through ctx.
func (cj *CasJobs) monitorJob(ctx context.Context, jobID int64) (JobStatus, error) {
	for {
		status, err := cj.jobs.jobStatus(ctx, jobID)
		if err != nil {
			return 0, err
		}
		if status.isTerminal() {
			logger.Debugf("job %v reached terminal status %v", jobID, status)
			return status, nil
		}
		logger.Debugf("job %v status %v, polling again in %v", jobID, status, cj.cfg.PollInterval)
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(cj.cfg.PollInterval):
		}
	}
}

// downloadOutput fetches the materialized output of an extract job and
// decodes it according to the requested format.
func (cj *CasJobs) downloadOutput(ctx context.Context, outputLoc, format string) (*Table, error) {
	if outputLoc == "" {
		return nil, &CasJobsError{
			Number:  ErrCodeBadResponse,
			Message: "output job reported no output location",
		}
	}
	body, status, err := cj.rest.get(ctx, outputLoc)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, transportError(status, outputLoc)
	}
	if detected := mimetype.Detect(body); !formatMatchesMIME(format, detected) {
		logger.Warnf("requested %v output but %v looks like %v", format, outputLoc, detected)
	}
	if format == "FITS" {
		return readFITSTable(body)
	}
	return decodeCSVDownload(string(body))
}

func formatMatchesMIME(format string, detected *mimetype.MIME) bool {
	if format == "FITS" {
		return detected.Is("application/fits")
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") || m.Is("text/csv") {
			return true
		}
	}
	return false
}
