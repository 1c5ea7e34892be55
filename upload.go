package casjobs

import (
	"context"
	"net/url"
	"strings"
)

// UploadTable serializes a table and loads it into a MyDB table. With
// exists false the target is created and must not already exist; with
// exists true rows are appended to an existing table.
//
// A payload over the configured limit is split into row blocks sized at
// half the limit and uploaded sequentially, with exists forced true
// after the first successful block so later blocks append. Each block
// goes back through the same path, so a block of unusually wide rows
// splits again.
func (cj *CasJobs) UploadTable(ctx context.Context, table string, t *Table, exists bool) error {
	data := t.encodeCSV(false)
	if len(data) <= cj.cfg.UploadLimit || t.NumRows() <= 1 {
		if len(data) > cj.cfg.UploadLimit {
			// a single row cannot be split further; the endpoint is the
			// final size arbiter
			logger.Warnf("single row for %v is %v bytes, over the %v byte limit", table, len(data), cj.cfg.UploadLimit)
		}
		// The ingestion endpoint treats embedded spaces as field
		// separators, so they cannot survive in the payload.
		return cj.uploadData(ctx, table, strings.ReplaceAll(data, " ", "_"), exists)
	}
	numRows := t.NumRows()
	blockRows := int(int64(numRows) * int64(cj.cfg.UploadLimit/2) / int64(len(data)))
	if blockRows == 0 {
		logger.Warnf("rows of %v are too wide for the %v byte upload limit, uploading one row at a time", table, cj.cfg.UploadLimit)
		blockRows = 1
	}
	logger.Debugf("uploading %v rows to %v in blocks of %v", numRows, table, blockRows)
	for lo := 0; lo < numRows; lo += blockRows {
		hi := intMin(lo+blockRows, numRows)
		if err := cj.UploadTable(ctx, table, t.Slice(lo, hi), exists); err != nil {
			return err
		}
		exists = true
	}
	return nil
}

// UploadCSV loads raw delimited text into a MyDB table. No splitting is
// done here; a caller with an oversized payload is expected to chunk it
// and thread the exists flag across calls. The remote endpoint is the
// final size arbiter, so an oversized payload is still sent, with a
// warning.
func (cj *CasJobs) UploadCSV(ctx context.Context, table, data string, exists bool) error {
	if len(data) > cj.cfg.UploadLimit {
		logger.Warnf("payload for %v is %v bytes, over the %v byte limit; the upload may be rejected", table, len(data), cj.cfg.UploadLimit)
	}
	return cj.uploadData(ctx, table, data, exists)
}

func (cj *CasJobs) uploadData(ctx context.Context, table, data string, exists bool) error {
	params := url.Values{}
	params.Set("tableName", table)
	params.Set("data", data)
	params.Set("tableExists", boolParam(exists))
	_, err := cj.jobs.sendRequest(ctx, "UploadData", params)
	return err
}
