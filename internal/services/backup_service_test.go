package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shieldsite/internal/constants"
	"shieldsite/internal/contenttree"
	"shieldsite/internal/models"
	"shieldsite/internal/repository"

	"gorm.io/gorm"
)

type backupFixture struct {
	db       *gorm.DB
	backup   *BackupService
	content  *ContentService
	sections *SectionService
	settings *SettingService
}

func newBackupFixture(t *testing.T) backupFixture {
	t.Helper()
	db := openTestDB(t)
	sectionRepo := repository.NewSectionRepository(db)
	f := backupFixture{
		db:       db,
		content:  NewContentService(repository.NewContentRepository(db)),
		sections: NewSectionService(sectionRepo),
		settings: NewSettingService(repository.NewSettingRepository(db)),
	}
	f.backup = NewBackupService(db, f.content, sectionRepo, f.settings)
	return f
}

func TestArchiveRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newBackupFixture(t)
	f.content.Commit(ctx, contenttree.Set(contenttree.Tree{}, "about.hero.title", "Backed up"), "admin")
	mustCreate(t, f.sections, SectionInput{Page: "about", Section: "journey", Title: "Journey", Order: 1})

	data, err := f.backup.Archive(ctx)
	if err != nil {
		t.Fatal(err)
	}

	f.content.Commit(ctx, contenttree.Set(contenttree.Tree{}, "about.hero.title", "Changed"), "admin")
	mustCreate(t, f.sections, SectionInput{Page: "about", Section: "extra", Title: "Extra"})

	backup, err := ReadArchive(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.backup.Restore(ctx, backup, "restore"); err != nil {
		t.Fatal(err)
	}

	if got := contenttree.Get(f.content.Live(ctx), "about.hero.title"); got != "Backed up" {
		t.Errorf("live title after restore = %q", got)
	}
	sections, _ := f.sections.List(ctx, "about")
	if len(sections) != 1 || sections[0].Section != "journey" {
		t.Errorf("sections after restore = %+v", sections)
	}
}

func TestReadArchiveAcceptsBareJSON(t *testing.T) {
	backup, err := ReadArchive([]byte(`{"content":{"about":{"hero":{"title":"T"}}},"sections":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if contenttree.Get(contenttree.Normalize(backup.Content), "about.hero.title") != "T" {
		t.Errorf("content = %v", backup.Content)
	}
	if _, err := ReadArchive([]byte("not json")); err == nil {
		t.Error("garbage should not decode")
	}
}

func TestSnapshotOmitsBackupHashes(t *testing.T) {
	ctx := context.Background()
	f := newBackupFixture(t)
	f.settings.UpdateSettings(ctx, map[string]string{constants.SettingWebdavLastBackupHash: "x"})
	snap, err := f.backup.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := snap.Settings[constants.SettingWebdavLastBackupHash]; ok {
		t.Error("backup hashes must not feed into the snapshot")
	}
}

func TestBackupFailsOnUnreadableContent(t *testing.T) {
	ctx := context.Background()
	f := newBackupFixture(t)
	if err := f.content.Commit(ctx, contenttree.Set(contenttree.Tree{}, "about.hero.title", "Precious"), "admin"); err != nil {
		t.Fatal(err)
	}
	if err := f.db.Exec("UPDATE site_contents SET content = ?", "{broken").Error; err != nil {
		t.Fatal(err)
	}

	if _, err := f.backup.Snapshot(ctx); err == nil {
		t.Fatal("snapshot of unreadable content should fail")
	}

	var uploads int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploads++
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := f.backup.BackupToWebdav(ctx, srv.URL, "", "")
	if err == nil || errors.Is(err, ErrBackupNoChange) {
		t.Fatalf("backup err = %v, want a load failure", err)
	}
	if uploads != 0 {
		t.Errorf("uploads = %d, want 0", uploads)
	}
	if got := contenttree.Get(f.content.Live(ctx), "about.hero.title"); got != "Precious" {
		t.Errorf("live title = %q, the cached tree should survive a failed read", got)
	}
}

func TestWebdavBackupSkipsUnchangedContent(t *testing.T) {
	ctx := context.Background()
	f := newBackupFixture(t)
	f.content.Commit(ctx, contenttree.Tree{"impact": contenttree.Tree{"hero": contenttree.Tree{"title": "Impact"}}}, "admin")

	var uploads int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "u" || pass != "p" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		uploads++
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	if err := f.backup.BackupToWebdav(ctx, srv.URL, "u", "p"); err != nil {
		t.Fatal(err)
	}
	if err := f.backup.BackupToWebdav(ctx, srv.URL, "u", "p"); !errors.Is(err, ErrBackupNoChange) {
		t.Fatalf("second backup err = %v, want ErrBackupNoChange", err)
	}
	if uploads != 1 {
		t.Errorf("uploads = %d, want 1", uploads)
	}

	mustCreate(t, f.sections, SectionInput{Page: "impact", Section: "stats", Title: "Stats"})
	if err := f.backup.BackupToWebdav(ctx, srv.URL, "u", "p"); err != nil {
		t.Fatalf("changed content should upload again: %v", err)
	}
	if uploads != 2 {
		t.Errorf("uploads = %d, want 2", uploads)
	}
}

func TestWebdavBackupReportsServerError(t *testing.T) {
	f := newBackupFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusInsufficientStorage)
	}))
	defer srv.Close()

	err := f.backup.BackupToWebdav(context.Background(), srv.URL, "", "")
	if err == nil {
		t.Fatal("want error from failing server")
	}
	if f.settings.GetSetting(constants.SettingWebdavLastBackupHash) != "" {
		t.Error("hash must only be stored after a successful upload")
	}
}

func TestRestoreDropsUnsupportedValues(t *testing.T) {
	ctx := context.Background()
	f := newBackupFixture(t)
	backup := &models.SiteBackup{Content: map[string]any{
		"about": map[string]any{"hero": map[string]any{"title": "T", "tags": []any{"a"}}},
	}}
	if err := f.backup.Restore(ctx, backup, "restore"); err != nil {
		t.Fatal(err)
	}
	live := f.content.Live(ctx)
	if contenttree.Get(live, "about.hero.title") != "T" {
		t.Errorf("live = %v", live)
	}
	if _, ok := contenttree.Lookup(live, "about.hero.tags"); ok {
		t.Error("arrays have no place in the content tree")
	}
}
