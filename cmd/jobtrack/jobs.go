package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/client"
	"github.com/jonathan/job-tracker/internal/render"
	"github.com/jonathan/job-tracker/internal/schemas"
	"github.com/jonathan/job-tracker/internal/types"
)

const (
	defaultImportBatch       = 100
	defaultImportConcurrency = 4
)

var (
	jobsStatus string
	jobsQuery  string

	importBatchSize   int
	importConcurrency int
	importDryRun      bool

	addJob    jobFlags
	updateJob jobFlags
)

// jobFlags holds the job fields settable from the command line.
type jobFlags struct {
	company        string
	role           string
	status         string
	dateApplied    string
	notes          string
	ctc            string
	location       string
	tech           string
	resume         string
	bondDuration   int
	bondFine       float64
	stipend        float64
	internDuration int
	deadline       string
	importantDate  string
	tag            string
}

func (jf *jobFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&jf.company, "company", "", "Company name")
	f.StringVar(&jf.role, "role", "", "Role applied for")
	f.StringVar(&jf.status, "status", "", fmt.Sprintf("Status (%s)", statusList()))
	f.StringVar(&jf.dateApplied, "date-applied", "", "Date applied, YYYY-MM-DD (defaults to today)")
	f.StringVar(&jf.notes, "notes", "", "Free-form notes")
	f.StringVar(&jf.ctc, "ctc", "", "Annual compensation in lakhs per annum; empty clears it")
	f.StringVar(&jf.location, "location", "", "Job location")
	f.StringVar(&jf.tech, "tech", "", "Comma-separated technologies")
	f.StringVar(&jf.resume, "resume", "", "Link to the resume sent")
	f.IntVar(&jf.bondDuration, "bond-duration", 0, "Bond duration in months")
	f.Float64Var(&jf.bondFine, "bond-fine", 0, "Bond break fine")
	f.Float64Var(&jf.stipend, "stipend", 0, "Monthly stipend")
	f.IntVar(&jf.internDuration, "intern-duration", 0, "Internship duration in months")
	f.StringVar(&jf.deadline, "deadline", "", "Application deadline, YYYY-MM-DD")
	f.StringVar(&jf.importantDate, "important-date", "", "Next important date (interview, test), YYYY-MM-DD")
	f.StringVar(&jf.tag, "tag", "", "Short tag shown on the home screen")
}

// apply copies every flag the user set onto req.
func (jf *jobFlags) apply(cmd *cobra.Command, req *types.JobRequest) error {
	changed := cmd.Flags().Changed
	if changed("company") {
		req.CompanyName = jf.company
	}
	if changed("role") {
		req.Role = jf.role
	}
	if changed("status") {
		req.Status = analytics.Status(jf.status)
	}
	if changed("date-applied") {
		req.DateApplied = jf.dateApplied
	}
	if changed("notes") {
		req.Notes = jf.notes
	}
	if changed("ctc") {
		ctc := analytics.ParseCTC(jf.ctc)
		if !ctc.Valid && strings.TrimSpace(jf.ctc) != "" {
			return fmt.Errorf("invalid --ctc %q: must be a number", jf.ctc)
		}
		req.CTC = ctc
	}
	if changed("location") {
		req.Location = jf.location
	}
	if changed("tech") {
		req.Techstacks = types.ParseList(jf.tech)
	}
	if changed("resume") {
		req.ResumeLink = jf.resume
	}
	if changed("bond-duration") {
		v := jf.bondDuration
		req.BondDuration = &v
	}
	if changed("bond-fine") {
		v := jf.bondFine
		req.BondFine = &v
	}
	if changed("stipend") {
		v := jf.stipend
		req.Stipend = &v
	}
	if changed("intern-duration") {
		v := jf.internDuration
		req.InternDuration = &v
	}
	if changed("deadline") {
		req.ApplicationDeadline = jf.deadline
	}
	if changed("important-date") {
		req.ImportantDate = jf.importantDate
	}
	if changed("tag") {
		req.Tag = jf.tag
	}
	return nil
}

func statusList() string {
	names := make([]string, 0, len(analytics.Statuses))
	for _, st := range analytics.Statuses {
		names = append(names, string(st))
	}
	return strings.Join(names, ", ")
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List and manage tracked job applications",
	Args:  cobra.NoArgs,
	RunE:  runJobsList,
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, optionally filtered by status or search text",
	Args:  cobra.NoArgs,
	RunE:  runJobsList,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show every field of one job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Track a new job application",
	Args:  cobra.NoArgs,
	RunE:  runJobsAdd,
}

var jobsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a job; fields without a flag keep their value",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsUpdate,
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Stop tracking a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsDelete,
}

var jobsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import jobs from a JSON or YAML file",
	Long: `Import jobs from a JSON or YAML file. The file holds either a list of jobs or
an object with a "jobs" list, and is checked against the job import schema
before anything is sent. Rows are sent in batches; each batch is created
all-or-nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: runJobsImport,
}

func init() {
	for _, c := range []*cobra.Command{jobsCmd, jobsListCmd} {
		c.Flags().StringVar(&jobsStatus, "status", "", "Only jobs with this status")
		c.Flags().StringVarP(&jobsQuery, "query", "q", "", "Search company, role, location and technologies")
	}
	addJob.bind(jobsAddCmd)
	updateJob.bind(jobsUpdateCmd)

	jobsImportCmd.Flags().IntVar(&importBatchSize, "batch-size", defaultImportBatch, fmt.Sprintf("Jobs per request (1-%d)", types.MaxImportJobs))
	jobsImportCmd.Flags().IntVar(&importConcurrency, "concurrency", defaultImportConcurrency, "Batches sent at once")
	jobsImportCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate the file without sending it")

	jobsCmd.AddCommand(jobsListCmd, jobsShowCmd, jobsAddCmd, jobsUpdateCmd, jobsDeleteCmd, jobsImportCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	filter := types.JobFilter{Status: analytics.Status(jobsStatus), Query: jobsQuery}
	if filter.Status != "" && !filter.Status.Valid() {
		return fmt.Errorf("unknown status %q; expected one of: %s", jobsStatus, statusList())
	}
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	jobs, err := c.ListJobs(cmd.Context(), filter)
	if err != nil {
		return app.checkAuth(err)
	}
	return writeOutput(app.out, app.cfg.Output, jobs, func() string { return render.Jobs(jobs) })
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	id, err := resolveJobID(cmd.Context(), c, args[0])
	if err != nil {
		return app.checkAuth(err)
	}
	job, err := c.GetJob(cmd.Context(), id)
	if err != nil {
		return app.checkAuth(err)
	}
	return writeOutput(app.out, app.cfg.Output, job, func() string { return render.Job(job) })
}

func runJobsAdd(cmd *cobra.Command, _ []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	var req types.JobRequest
	if err := addJob.apply(cmd, &req); err != nil {
		return err
	}
	req.Normalize(app.now())
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%s", types.ValidationMessage(err))
	}

	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	job, err := c.CreateJob(cmd.Context(), req)
	if err != nil {
		return app.checkAuth(err)
	}
	return writeOutput(app.out, app.cfg.Output, job, func() string { return render.Job(job) })
}

func runJobsUpdate(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	id, err := resolveJobID(cmd.Context(), c, args[0])
	if err != nil {
		return app.checkAuth(err)
	}
	current, err := c.GetJob(cmd.Context(), id)
	if err != nil {
		return app.checkAuth(err)
	}

	req := jobRequest(current)
	if err := updateJob.apply(cmd, &req); err != nil {
		return err
	}
	req.Normalize(app.now())
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%s", types.ValidationMessage(err))
	}

	job, err := c.UpdateJob(cmd.Context(), id, req)
	if err != nil {
		return app.checkAuth(err)
	}
	return writeOutput(app.out, app.cfg.Output, job, func() string { return render.Job(job) })
}

func runJobsDelete(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	id, err := resolveJobID(cmd.Context(), c, args[0])
	if err != nil {
		return app.checkAuth(err)
	}
	if err := c.DeleteJob(cmd.Context(), id); err != nil {
		return app.checkAuth(err)
	}
	app.printf("Deleted job %s.\n", id)
	return nil
}

func runJobsImport(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if importBatchSize < 1 || importBatchSize > types.MaxImportJobs {
		return fmt.Errorf("--batch-size must be between 1 and %d", types.MaxImportJobs)
	}
	if importConcurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}

	req, err := readImport(args[0], app)
	if err != nil {
		return err
	}
	if importDryRun {
		app.printf("%s is valid: %d jobs ready to import.\n", args[0], len(req.Jobs))
		return nil
	}

	c, _, err := app.signedIn()
	if err != nil {
		return err
	}
	created, err := sendImport(cmd.Context(), c, batchJobs(req.Jobs, importBatchSize), importConcurrency)
	if err != nil {
		return fmt.Errorf("imported %d of %d jobs: %w", created, len(req.Jobs), app.checkAuth(err))
	}
	app.printf("Imported %d jobs.\n", created)
	return nil
}

// readImport loads, schema-checks and validates an import file.
func readImport(path string, app *cliApp) (*types.ImportJobsRequest, error) {
	data, err := schemas.ReadJobImport(path)
	if err != nil {
		return nil, err
	}
	var req types.ImportJobsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode import file: %w", err)
	}
	req.Normalize(app.now())
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s", types.ValidationMessage(err))
	}
	return &req, nil
}

// batchJobs splits rows into consecutive batches of at most size rows.
func batchJobs(rows []types.JobRequest, size int) [][]types.JobRequest {
	var batches [][]types.JobRequest
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		batches = append(batches, rows[start:end])
	}
	return batches
}

// sendImport posts batches with at most limit requests in flight and
// returns how many jobs were created. The first failure cancels batches that
// have not been sent yet.
func sendImport(ctx context.Context, c *client.Client, batches [][]types.JobRequest, limit int) (int, error) {
	var created atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, batch := range batches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			resp, err := c.ImportJobs(gctx, types.ImportJobsRequest{Jobs: batch})
			if err != nil {
				return err
			}
			created.Add(int64(resp.Created))
			return nil
		})
	}
	err := g.Wait()
	return int(created.Load()), err
}

// jobRequest converts a stored job back into an editable request.
func jobRequest(j *types.Job) types.JobRequest {
	return types.JobRequest{
		CompanyName:         j.CompanyName,
		Role:                j.Role,
		Status:              j.Status,
		DateApplied:         j.DateApplied,
		Notes:               j.Notes,
		CTC:                 j.CTC,
		Location:            j.Location,
		Techstacks:          j.Techstacks,
		ResumeLink:          j.ResumeLink,
		BondDuration:        j.BondDuration,
		BondFine:            j.BondFine,
		Stipend:             j.Stipend,
		InternDuration:      j.InternDuration,
		ApplicationDeadline: j.ApplicationDeadline,
		ImportantDate:       j.ImportantDate,
		Tag:                 j.Tag,
	}
}

// resolveJobID accepts a full id or a unique prefix of one, as printed by
// `jobtrack jobs list`.
func resolveJobID(ctx context.Context, c *client.Client, arg string) (uuid.UUID, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}
	jobs, err := c.ListJobs(ctx, types.JobFilter{})
	if err != nil {
		return uuid.Nil, err
	}
	ids := make([]uuid.UUID, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return matchPrefix("job", arg, ids)
}

func matchPrefix(kind, prefix string, ids []uuid.UUID) (uuid.UUID, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return uuid.Nil, fmt.Errorf("%s id is empty", kind)
	}
	var matches []uuid.UUID
	for _, id := range ids {
		if strings.HasPrefix(id.String(), prefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("no %s matches id %q", kind, prefix)
	case 1:
		return matches[0], nil
	default:
		return uuid.Nil, fmt.Errorf("id %q matches %d %ss; use more characters", prefix, len(matches), kind)
	}
}
