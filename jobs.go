package casjobs

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// JobStatus is the numeric job status reported by the jobs service.
type JobStatus int

// Status codes defined at server side.
const (
	JobReady JobStatus = iota
	JobStarted
	JobCanceling
	JobCancelled
	JobFailed
	JobFinished
)

func (js JobStatus) String() string {
	names := [...]string{"READY", "STARTED", "CANCELING", "CANCELLED", "FAILED", "FINISHED"}
	if js < 0 || int(js) >= len(names) {
		return fmt.Sprintf("STATUS_%d", int(js))
	}
	return names[js]
}

func (js JobStatus) isTerminal() bool {
	switch js {
	case JobCancelled, JobFailed, JobFinished:
		return true
	default:
		return false
	}
}

func (js JobStatus) isSuccess() bool {
	return js == JobFinished
}

// JobInfo describes a submitted job, in particular the location of the
// materialized output for extract jobs.
type JobInfo struct {
	JobID     int64  `xml:"JobID"`
	Status    int    `xml:"Status"`
	TaskName  string `xml:"TaskName"`
	OutputLoc string `xml:"OutputLoc"`
	Error     string `xml:"Error"`
}

// jobService is the remote-job collaborator: the query submission,
// status polling and raw upload primitives of the jobs endpoint. It is
// an interface so the retrieval and upload logic can be exercised
// against a fake in tests.
type jobService interface {
	executeQuick(ctx context.Context, sql, queryContext, taskName string, isSystem bool) (string, error)
	submitJob(ctx context.Context, sql, queryContext, taskName string, estimate int) (int64, error)
	jobStatus(ctx context.Context, jobID int64) (JobStatus, error)
	jobInfo(ctx context.Context, jobID int64) (*JobInfo, error)
	requestOutput(ctx context.Context, table, format string) (int64, error)
	sendRequest(ctx context.Context, operation string, params url.Values) ([]byte, error)
}

// casJobsService speaks the XML-over-HTTP protocol of the jobs.asmx
// endpoint. Every call carries the wsid/pw pair.
type casJobsService struct {
	rest    *casRestful
	baseURL string
	wsid    string
	pw      string
}

func (svc *casJobsService) call(ctx context.Context, operation string, params url.Values) ([]byte, error) {
	params.Set("wsid", svc.wsid)
	params.Set("pw", svc.pw)
	fullURL := svc.baseURL + "/" + operation
	body, status, err := svc.rest.postForm(ctx, fullURL, params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, transportError(status, fullURL)
	}
	return body, nil
}

func (svc *casJobsService) executeQuick(ctx context.Context, sql, queryContext, taskName string, isSystem bool) (string, error) {
	params := url.Values{}
	params.Set("qry", sql)
	params.Set("context", queryContext)
	params.Set("taskname", taskName)
	params.Set("isSystem", boolParam(isSystem))
	body, err := svc.call(ctx, "ExecuteQuickJob", params)
	if err != nil {
		return "", err
	}
	return xmlInnerText(body)
}

func (svc *casJobsService) submitJob(ctx context.Context, sql, queryContext, taskName string, estimate int) (int64, error) {
	params := url.Values{}
	params.Set("qry", sql)
	params.Set("context", queryContext)
	params.Set("taskname", taskName)
	params.Set("estimate", strconv.Itoa(estimate))
	body, err := svc.call(ctx, "SubmitJob", params)
	if err != nil {
		return 0, err
	}
	return xmlInnerInt64(body)
}

func (svc *casJobsService) jobStatus(ctx context.Context, jobID int64) (JobStatus, error) {
	params := url.Values{}
	params.Set("jobid", strconv.FormatInt(jobID, 10))
	body, err := svc.call(ctx, "GetJobStatus", params)
	if err != nil {
		return 0, err
	}
	code, err := xmlInnerInt64(body)
	if err != nil {
		return 0, err
	}
	return JobStatus(code), nil
}

func (svc *casJobsService) jobInfo(ctx context.Context, jobID int64) (*JobInfo, error) {
	params := url.Values{}
	params.Set("owner_wsid", svc.wsid)
	params.Set("owner_pw", svc.pw)
	params.Set("conditions", fmt.Sprintf("jobid : %d", jobID))
	params.Set("includeSystem", boolParam(true))
	body, err := svc.call(ctx, "GetJobs", params)
	if err != nil {
		return nil, err
	}
	jobs, err := parseJobList(body)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, &CasJobsError{
			Number:  ErrCodeBadResponse,
			Message: "job list response contains no records",
			JobID:   jobID,
		}
	}
	return &jobs[0], nil
}

func (svc *casJobsService) requestOutput(ctx context.Context, table, format string) (int64, error) {
	params := url.Values{}
	params.Set("tableName", table)
	params.Set("type", format)
	body, err := svc.call(ctx, "SubmitExtractJob", params)
	if err != nil {
		return 0, err
	}
	return xmlInnerInt64(body)
}

func (svc *casJobsService) sendRequest(ctx context.Context, operation string, params url.Values) ([]byte, error) {
	return svc.call(ctx, operation, params)
}

func boolParam(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// xmlInnerText extracts the character data of a single-element XML
// response such as <string xmlns="...">payload</string>.
func xmlInnerText(body []byte) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(body)))
	var text strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			text.Write(cd)
		}
	}
	return text.String(), nil
}

func xmlInnerInt64(body []byte) (int64, error) {
	text, err := xmlInnerText(body)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, &CasJobsError{
			Number:      ErrCodeBadResponse,
			Message:     "expected numeric response, got %q",
			MessageArgs: []interface{}{strings.TrimSpace(text)},
		}
	}
	return n, nil
}

type jobListEnvelope struct {
	Jobs []JobInfo `xml:"CJJob"`
}

func parseJobList(body []byte) ([]JobInfo, error) {
	var envelope jobListEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, &CasJobsError{
			Number:      ErrCodeBadResponse,
			Message:     "failed to parse job list: %v",
			MessageArgs: []interface{}{err},
		}
	}
	return envelope.Jobs, nil
}
