package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/kkraus14/pygdf"
	"github.com/kkraus14/pygdf/core"
	"github.com/kkraus14/pygdf/interop"
	"github.com/kkraus14/pygdf/mem"
	"github.com/kkraus14/pygdf/ps"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	baseDir := flag.String("baseDir", "", "Base directory for the snapshot store")
	gitUrl := flag.String("gitUrl", "", "Git URL to clone the snapshot store from")
	userName := flag.String("name", "pygdf", "User name for snapshot commits")
	userEmail := flag.String("email", "cli@pygdf.local", "User email for snapshot commits")
	dsn := flag.String("dsn", "", "DuckDB database to import from (empty = in-memory)")
	query := flag.String("query", "", "SQL query for the import command")
	limit := flag.Int("limit", 20, "Maximum rows to display for show")
	accessKey := flag.String("accessKey", "", "S3 access key for export/fetch")
	secretKey := flag.String("secretKey", "", "S3 secret key for export/fetch")
	region := flag.String("region", "", "S3 region for export/fetch")
	endpoint := flag.String("endpoint", "", "Custom S3-compatible endpoint")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printBanner()
		printUsage()
		return
	}

	var persistence *ps.Persistence
	var err error
	if *baseDir == "" {
		persistence, err = ps.NewMemoryPersistence()
	} else {
		var gitUrlPtr *string
		if *gitUrl != "" {
			gitUrlPtr = gitUrl
		}
		persistence, err = ps.NewFilePersistence(*baseDir, gitUrlPtr)
	}
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}

	instance := pygdf.Open(persistence)
	identity := core.Identity{Name: *userName, Email: *userEmail}
	pool := mem.Default()

	var remoteCfg *ps.RemoteConfig
	if *accessKey != "" || *region != "" || *endpoint != "" {
		remoteCfg = &ps.RemoteConfig{
			AccessKey: *accessKey,
			SecretKey: *secretKey,
			Region:    *region,
			Endpoint:  *endpoint,
		}
	}

	switch args[0] {
	case "ls":
		for _, name := range instance.Snapshots() {
			fmt.Println(name)
		}

	case "show":
		requireArgs(args, 2, "show <snapshot>")
		schema, tbl, err := instance.Load(args[1], pool)
		if err != nil {
			fail(err)
		}
		defer tbl.Release()
		renderTable(os.Stdout, schema, tbl.View(), *limit)

	case "import":
		requireArgs(args, 2, "import <snapshot> -query <sql> [-dsn <file>]")
		if *query == "" {
			fail(fmt.Errorf("import requires -query"))
		}
		db, err := sql.Open("duckdb", *dsn)
		if err != nil {
			fail(err)
		}
		defer db.Close()

		schema, tbl, err := interop.QueryTable(context.Background(), db, *query, pool)
		if err != nil {
			fail(err)
		}
		defer tbl.Release()

		txn, err := instance.Save(args[1], schema, tbl, identity)
		if err != nil {
			fail(err)
		}
		fmt.Printf("%sSaved snapshot %s (%d rows, %d columns) in %s%s\n",
			SuccessColor, args[1], tbl.NumRows(), tbl.NumColumns(), txn.Id[:8], ResetColor)

	case "export":
		requireArgs(args, 3, "export <snapshot> <url>")
		persistence.RLock()
		err := persistence.ExportSnapshot(args[1], args[2], remoteCfg)
		persistence.RUnlock()
		if err != nil {
			fail(err)
		}
		fmt.Printf("%sExported %s to %s%s\n", SuccessColor, args[1], args[2], ResetColor)

	case "fetch":
		requireArgs(args, 3, "fetch <snapshot> <url>")
		persistence.Lock()
		txn, err := persistence.ImportSnapshot(args[1], args[2], remoteCfg, identity)
		persistence.Unlock()
		if err != nil {
			fail(err)
		}
		fmt.Printf("%sFetched %s in %s%s\n", SuccessColor, args[1], txn.Id[:8], ResetColor)

	case "drop":
		requireArgs(args, 2, "drop <snapshot>")
		if _, err := instance.Drop(args[1], identity); err != nil {
			fail(err)
		}
		fmt.Printf("%sDropped %s%s\n", SuccessColor, args[1], ResetColor)

	case "log":
		var txns []ps.Transaction
		if len(args) > 1 {
			txns = persistence.TransactionsFrom(args[1])
		} else {
			txns = persistence.TransactionsSince(time.Time{})
		}
		for _, txn := range txns {
			fmt.Printf("%s %s %s\n", txn.Id[:8], txn.When.Format(time.RFC3339), txn.Author)
		}

	default:
		fmt.Printf("%sUnknown command: %s%s\n", ErrorColor, args[0], ResetColor)
		printUsage()
		os.Exit(1)
	}
}

func requireArgs(args []string, n int, usage string) {
	if len(args) < n {
		fail(fmt.Errorf("usage: pygdf %s", usage))
	}
}

func fail(err error) {
	fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
	os.Exit(1)
}

func printBanner() {
	fmt.Println()
	bannerWidth := 39 // inner width of the banner box
	versionLine := fmt.Sprintf("pygdf v%s", Version)
	padding := bannerWidth - len(versionLine) - 2 // -2 for "  " margins
	if padding < 0 {
		padding = 0
	}
	leftPad := padding / 2
	rightPad := padding - leftPad

	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s║ %*s%s%*s ║%s\n", BoldColor, PromptColor, leftPad, "", versionLine, rightPad, "", ResetColor)
	fmt.Printf("%s%s║   Columnar Snapshot Table Store       ║%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println()
}

func printUsage() {
	fmt.Println("Usage: pygdf [flags] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  ls                        List snapshots")
	fmt.Println("  show <snapshot>           Display a snapshot")
	fmt.Println("  import <snapshot>         Materialize -query via DuckDB and save")
	fmt.Println("  export <snapshot> <url>   Export archive to s3://, file:// or path")
	fmt.Println("  fetch <snapshot> <url>    Import archive from s3://, http(s):// or path")
	fmt.Println("  drop <snapshot>           Remove a snapshot")
	fmt.Println("  log [from]                Show history, optionally from a transaction id")
	fmt.Println()
	flag.PrintDefaults()
}
