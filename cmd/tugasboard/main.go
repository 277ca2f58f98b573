package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"github.com/tugaskita/tugasboard/internal/config"
	"github.com/tugaskita/tugasboard/internal/spreadsheet"
	"github.com/tugaskita/tugasboard/pkg/clog"
	"github.com/tugaskita/tugasboard/pkg/color"
)

var (
	app = kingpin.New("tugasboard", "Task dashboard client for the TugasKita API")

	// Session commands
	loginCmd      = app.Command("login", "Log in and remember the session")
	loginUsername = loginCmd.Flag("username", "Account username").Short('u').Required().String()
	loginPassword = loginCmd.Flag("password", "Account password").Short('p').Envar("TUGASBOARD_PASSWORD").Required().String()

	logoutCmd = app.Command("logout", "Forget the stored session")

	// Task views
	listCmd     = app.Command("list", "List tasks, in-progress work first").Default()
	listSearch  = listCmd.Flag("search", "Case-insensitive title search").Short('s').String()
	listFrom    = listCmd.Flag("from", "Earliest task date (YYYY-MM-DD)").String()
	listTo      = listCmd.Flag("to", "Latest task date (YYYY-MM-DD)").String()
	listPage    = listCmd.Flag("page", "Page number").Default("1").Int()
	listFull    = listCmd.Flag("full", "Do not shorten titles and descriptions").Bool()
	listOffline = listCmd.Flag("offline", "Read the last saved snapshot instead of the API").Bool()

	showCmd     = app.Command("show", "Show one task and the moves it allows")
	showID      = showCmd.Arg("id", "Task ID").Required().String()
	showOffline = showCmd.Flag("offline", "Read the last saved snapshot instead of the API").Bool()

	monitorCmd     = app.Command("monitor", "Show the progress overview")
	monitorOffline = monitorCmd.Flag("offline", "Read the last saved snapshot instead of the API").Bool()

	reportCmd     = app.Command("report", "Write the progress overview as a PDF")
	reportOut     = reportCmd.Arg("file", "Output file").Default("Monitoring_Tugas.pdf").String()
	reportOffline = reportCmd.Flag("offline", "Read the last saved snapshot instead of the API").Bool()

	// Status changes
	startCmd = app.Command("start", "Start working on a waiting task")
	startID  = startCmd.Arg("id", "Task ID").Required().String()

	rejectCmd    = app.Command("reject", "Reject a waiting task")
	rejectID     = rejectCmd.Arg("id", "Task ID").Required().String()
	rejectReason = rejectCmd.Flag("reason", "Why the task is rejected").Short('r').Required().String()

	doneCmd    = app.Command("done", "Finish a task in progress")
	doneID     = doneCmd.Arg("id", "Task ID").Required().String()
	donePhoto  = doneCmd.Flag("photo", "After photo").Required().ExistingFile()
	doneRemark = doneCmd.Flag("remark", "Completion note").Short('m').Required().String()

	// Creation
	createCmd         = app.Command("create", "Create a task")
	createTitle       = createCmd.Flag("title", "Task title").Short('t').Required().String()
	createDescription = createCmd.Flag("description", "Task description").Short('d').String()
	createPriority    = createCmd.Flag("priority", "Biasa, Sedang or Urgent").Default("Biasa").Enum("Biasa", "Sedang", "Urgent")
	createDate        = createCmd.Flag("date", "Task date (YYYY-MM-DD), today when omitted").String()
	createPhoto       = createCmd.Flag("photo", "Before photo").ExistingFile()

	// Spreadsheets
	importCmd      = app.Command("import", "Create tasks from an xlsx workbook")
	importFile     = importCmd.Arg("file", "Workbook to import").Required().ExistingFile()
	importPriority = importCmd.Flag("default-priority", "Priority for rows without one").String()

	templateCmd = app.Command("template", "Write an empty import workbook")
	templateOut = templateCmd.Arg("file", "Output file").Default(spreadsheet.TemplateFileName).String()

	exportCmd      = app.Command("export", "Write the task list as an xlsx workbook")
	exportOut      = exportCmd.Arg("file", "Output file").Default(spreadsheet.ExportFileName).String()
	exportSearch   = exportCmd.Flag("search", "Case-insensitive title search").Short('s').String()
	exportFrom     = exportCmd.Flag("from", "Earliest task date (YYYY-MM-DD)").String()
	exportTo       = exportCmd.Flag("to", "Latest task date (YYYY-MM-DD)").String()
	exportNoPhotos = exportCmd.Flag("no-photos", "Skip photo thumbnails").Bool()
	exportOffline  = exportCmd.Flag("offline", "Read the last saved snapshot instead of the API").Bool()

	// Long-running
	watchCmd   = app.Command("watch", "Follow live task changes and ring on each one")
	watchQuiet = watchCmd.Flag("quiet", "Do not ring the terminal bell").Bool()

	serveCmd = app.Command("serve", "Run the local dashboard server")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	clog.Setup(os.Stderr, env.Env, env.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := newCLI(ctx, env, os.Stdout)
	if err != nil {
		exit(stop, err)
	}

	switch command {
	case loginCmd.FullCommand():
		err = c.login(ctx, *loginUsername, *loginPassword)
	case logoutCmd.FullCommand():
		err = c.logout(ctx)
	case listCmd.FullCommand():
		err = c.list(ctx, listOptions{
			search:  *listSearch,
			from:    *listFrom,
			to:      *listTo,
			page:    *listPage,
			full:    *listFull,
			offline: *listOffline,
		})
	case showCmd.FullCommand():
		err = c.show(ctx, *showID, *showOffline)
	case monitorCmd.FullCommand():
		err = c.monitor(ctx, *monitorOffline)
	case reportCmd.FullCommand():
		err = c.report(ctx, *reportOut, *reportOffline)
	case startCmd.FullCommand():
		err = c.start(ctx, *startID)
	case rejectCmd.FullCommand():
		err = c.reject(ctx, *rejectID, *rejectReason)
	case doneCmd.FullCommand():
		err = c.done(ctx, *doneID, *donePhoto, *doneRemark)
	case createCmd.FullCommand():
		err = c.create(ctx, createOptions{
			title:       *createTitle,
			description: *createDescription,
			priority:    *createPriority,
			date:        *createDate,
			photo:       *createPhoto,
		})
	case importCmd.FullCommand():
		err = c.importWorkbook(ctx, *importFile, *importPriority)
	case templateCmd.FullCommand():
		err = c.template(*templateOut)
	case exportCmd.FullCommand():
		err = c.export(ctx, exportOptions{
			out:      *exportOut,
			search:   *exportSearch,
			from:     *exportFrom,
			to:       *exportTo,
			noPhotos: *exportNoPhotos,
			offline:  *exportOffline,
		})
	case watchCmd.FullCommand():
		err = c.watch(ctx, !*watchQuiet)
	case serveCmd.FullCommand():
		err = c.serve(ctx)
	}
	if err != nil {
		exit(stop, err)
	}
}

func exit(stop context.CancelFunc, err error) {
	stop()
	fmt.Fprintln(os.Stderr, color.Error.Sprint("Error: ")+describe(err))
	os.Exit(1)
}
