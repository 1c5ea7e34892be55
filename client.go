package casjobs

import (
	"context"
	"fmt"
)

// CasJobs is a client for one CasJobs installation. It owns the job
// service collaborator and layers table retrieval, decoding and upload
// on top of it.
type CasJobs struct {
	cfg  *Config
	rest *casRestful
	jobs jobService
}

// New resolves credentials, fills configuration defaults and, for
// username logins, performs the WSID lookup. Configuration errors are
// returned before any network I/O.
func New(ctx context.Context, cfg *Config) (*CasJobs, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := resolveCredentials(cfg); err != nil {
		return nil, err
	}
	fillMissingConfigParameters(cfg)
	cj := &CasJobs{
		cfg:  cfg,
		rest: newRestful(cfg),
	}
	if cfg.Username != "" {
		wsid, err := cj.getWSID(ctx)
		if err != nil {
			return nil, err
		}
		cfg.WSID = wsid
	}
	cj.jobs = &casJobsService{
		rest:    cj.rest,
		baseURL: cfg.BaseURL,
		wsid:    cfg.WSID,
		pw:      cfg.Password,
	}
	return cj, nil
}

// QuickOptions modifies a quick job submission. The zero value submits
// against the client's default context with the task name "quickie".
type QuickOptions struct {
	Context  string // query context; empty means the client default
	TaskName string
	System   bool // run as a system job, hidden from the web UI history
}

func (opts *QuickOptions) normalize(cfg *Config) QuickOptions {
	out := QuickOptions{}
	if opts != nil {
		out = *opts
	}
	if out.Context == "" {
		out.Context = cfg.Context
	}
	if out.TaskName == "" {
		out.TaskName = "quickie"
	}
	return out
}

// QuickRaw runs a quick job and returns the service's raw CSV payload.
func (cj *CasJobs) QuickRaw(ctx context.Context, sql string, opts *QuickOptions) (string, error) {
	o := opts.normalize(cj.cfg)
	return cj.jobs.executeQuick(ctx, sql, o.Context, o.TaskName, o.System)
}

// Quick runs a quick job and decodes the inline CSV result.
func (cj *CasJobs) Quick(ctx context.Context, sql string, opts *QuickOptions) (*Table, error) {
	result, err := cj.QuickRaw(ctx, sql, opts)
	if err != nil {
		return nil, err
	}
	return decodeQuickResult(result)
}

// SubmitJob submits an asynchronous query job and returns its handle.
func (cj *CasJobs) SubmitJob(ctx context.Context, sql string, opts *QuickOptions) (int64, error) {
	o := opts.normalize(cj.cfg)
	return cj.jobs.submitJob(ctx, sql, o.Context, o.TaskName, 1)
}

// JobStatus returns the current status of an asynchronous job.
func (cj *CasJobs) JobStatus(ctx context.Context, jobID int64) (JobStatus, error) {
	return cj.jobs.jobStatus(ctx, jobID)
}

// ListTables lists the tables in MyDB or another context.
func (cj *CasJobs) ListTables(ctx context.Context, queryContext string) ([]string, error) {
	if queryContext == "" {
		queryContext = "MYDB"
	}
	tab, err := cj.Quick(ctx, "SELECT Distinct TABLE_NAME FROM information_schema.TABLES", &QuickOptions{
		Context:  queryContext,
		TaskName: "listtables",
		System:   true,
	})
	if err != nil {
		return nil, err
	}
	return tab.StringColumn("TABLE_NAME")
}

// DropTableIfExists drops a MyDB table without an error if it does not
// exist.
func (cj *CasJobs) DropTableIfExists(ctx context.Context, table string) error {
	_, err := cj.Quick(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table), &QuickOptions{Context: "MYDB"})
	return err
}
