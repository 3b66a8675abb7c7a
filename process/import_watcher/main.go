// Command import_watcher scans a drop directory for transaction CSV files in
// the template format, books the valid rows into one organization and moves
// handled files into a processed/ subdirectory. With --watch it keeps running
// and picks up new files as they appear.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"budgetup/models"
	"budgetup/pkg/csvio"
	"budgetup/pkg/ledger"
	"budgetup/repository"
)

var db *gorm.DB
var repos *repository.Repositories

// global flags (parsed in main)
var (
	verbose bool
	dryRun  bool
)

// nameIndex caches the org's account and category names so each file costs
// two queries up front instead of one per row.
type nameIndex struct {
	accounts   map[string]uint
	categories map[string]models.Category
	mu         sync.RWMutex
}

func loadNameIndex(orgID uint) (*nameIndex, error) {
	idx := &nameIndex{
		accounts:   make(map[string]uint),
		categories: make(map[string]models.Category),
	}
	accounts, err := repos.Accounts.ListByOrganization(orgID)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		idx.accounts[strings.ToLower(a.Name)] = a.ID
	}
	categories, err := repos.Categories.ListByOrganization(orgID)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		idx.categories[strings.ToLower(c.Name)] = c
	}
	return idx, nil
}

func (idx *nameIndex) account(name string) (uint, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.accounts[strings.ToLower(name)]
	return id, ok
}

func (idx *nameIndex) category(name string) (models.Category, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	c, ok := idx.categories[strings.ToLower(name)]
	return c, ok
}

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

func main() {
	_ = godotenv.Load()

	dirFlag := flag.String("dir", "imports", "directory to scan for transaction CSV files")
	orgID := flag.Uint("org-id", 0, "organization to book into (if omitted and exactly one org exists, uses it)")
	watch := flag.Bool("watch", false, "watch directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	flag.BoolVar(&verbose, "verbose", false, "verbose per-file logging")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and validate only, write nothing")
	flag.Parse()

	db = mustInitDBFromEnv()
	repos = repository.New(db)

	org := resolveOrganization(*orgID)
	idx, err := loadNameIndex(org.ID)
	if err != nil {
		log.Fatalf("failed to preload names for org %d: %v", org.ID, err)
	}
	log.Printf("Booking into %q (accounts=%d categories=%d)", org.Name, len(idx.accounts), len(idx.categories))

	files := listCSVFiles(*dirFlag)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(*dirFlag, org, idx, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, org, idx, effectiveWorkers(*workers)); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// resolveOrganization finds the target org either by explicit id or, when the
// database holds exactly one, by default.
func resolveOrganization(id uint) models.Organization {
	var org models.Organization
	if id != 0 {
		if err := db.First(&org, id).Error; err != nil {
			log.Fatalf("failed to find organization id %d: %v", id, err)
		}
		return org
	}
	var count int64
	db.Model(&models.Organization{}).Count(&count)
	if count != 1 {
		log.Fatalf("no --org-id provided and %d organizations exist; pass --org-id", count)
	}
	if err := db.First(&org).Error; err != nil {
		log.Fatalf("failed to load organization: %v", err)
	}
	return org
}

func listCSVFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".csv"
}

func watchDirectory(dir string, org models.Organization, idx *nameIndex, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		// simple debounce map of pending files
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	go runWorkerPool(dir, org, idx, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}

// worker pool orchestrator
func runWorkerPool(dir string, org models.Organization, idx *nameIndex, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				processFile(dir, name, org, idx)
			}
		}()
	}
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		// scan-only mode closes when the initial list is fed
		if len(extraCh) == 0 {
			close(fileCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

// processFile books one CSV file and moves it to processed/ when at least one
// row landed. Files where every row failed stay in place for correction.
func processFile(dir, name string, org models.Organization, idx *nameIndex) {
	path := filepath.Join(dir, name)
	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("ERROR read %s: %v", name, err)
		return
	}
	rows, parseErrs := csvio.ParseTransactions(string(content))
	for _, e := range parseErrs {
		log.Printf("REJECT %s %s", name, e)
	}

	imported := 0
	for _, row := range rows {
		rowNum := row.Line
		draft, verrs := draftFromRow(org, idx, row)
		if len(verrs) > 0 {
			for _, e := range verrs {
				log.Printf("REJECT %s row %d: %s", name, rowNum, e)
			}
			continue
		}
		if dryRun {
			logV("OK %s row %d: %s %s %s", name, rowNum, draft.Type, draft.Amount.StringFixed(2), draft.Description)
			imported++
			continue
		}
		tx := models.Transaction{OrganizationID: org.ID}
		ledger.ApplyDraft(&tx, draft)
		if err := repos.Transactions.Create(&tx); err != nil {
			log.Printf("ERROR insert %s row %d: %v", name, rowNum, err)
			continue
		}
		imported++
	}
	log.Printf("FILE %s imported=%d rejected=%d", name, imported, len(rows)-imported+len(parseErrs))

	if dryRun || imported == 0 {
		return
	}
	if err := moveToProcessed(path, name); err != nil {
		log.Printf("WARN failed to move processed file %s: %v", name, err)
	} else {
		logV("moved processed %s", name)
	}
}

// draftFromRow resolves names against the cached index and validates.
// Resolution failures are reported in the same shape as rule violations.
func draftFromRow(org models.Organization, idx *nameIndex, row csvio.Row) (ledger.Draft, []string) {
	draft := ledger.Draft{
		Type:        row.Type,
		Amount:      row.Amount,
		Currency:    row.Currency,
		Description: row.Description,
		OccurredAt:  row.OccurredAt,
		ITBISPct:    row.ITBISPct,
		Notes:       row.Notes,
	}
	var errs []string
	var category *models.Category
	if row.AccountName != "" {
		id, ok := idx.account(row.AccountName)
		if !ok {
			return draft, []string{fmt.Sprintf("unknown account %q", row.AccountName)}
		}
		draft.AccountID = id
	}
	if row.CategoryName != "" {
		cat, ok := idx.category(row.CategoryName)
		if !ok {
			return draft, []string{fmt.Sprintf("unknown category %q", row.CategoryName)}
		}
		draft.CategoryID = &cat.ID
		category = &cat
	}
	if row.TransferToAccountName != "" {
		id, ok := idx.account(row.TransferToAccountName)
		if !ok {
			return draft, []string{fmt.Sprintf("unknown account %q", row.TransferToAccountName)}
		}
		draft.TransferToAccountID = &id
	}
	draft = draft.Normalize(org.Currency)
	for _, ve := range ledger.ValidateDraft(draft, category) {
		errs = append(errs, ve.Error())
	}
	return draft, errs
}

// moveToProcessed moves a handled file into dir/processed/<name>, attempting
// an atomic rename and falling back to copy+remove across filesystems.
func moveToProcessed(srcFullPath, name string) error {
	processedDir := filepath.Join(filepath.Dir(srcFullPath), "processed")
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(processedDir, name)
	if err := os.Rename(srcFullPath, dst); err == nil {
		return nil
	}
	return copyRemove(srcFullPath, dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	_ = out.Close()
	return os.Remove(src)
}
