package tasks

import (
	"context"
	"errors"
	"log"
	"runtime/debug"
	"strings"
	"sync"

	"shieldsite/internal/constants"
	"shieldsite/internal/services"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the GitHub and WebDAV backups on the cron specs stored in settings.
type Scheduler struct {
	cron           *cron.Cron
	settingService *services.SettingService
	backupService  *services.BackupService
	mu             sync.Mutex
	specs          map[string]string
	stopped        bool
}

func NewScheduler(settingService *services.SettingService, backupService *services.BackupService) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		settingService: settingService,
		backupService:  backupService,
	}
}

func (s *Scheduler) Start() {
	log.Println("backup scheduler starting...")
	s.ReloadTasks()
}

// Stop halts the scheduler and waits for running jobs. The lock is released
// before waiting: a finishing job stores its backup hash, and the resulting
// settings change calls back into ReloadTasks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	c := s.cron
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// Entries reports how many backup jobs are scheduled.
func (s *Scheduler) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cron.Entries())
}

// ReloadTasks rebuilds the cron table when either backup spec changed. Other
// setting updates, such as the stored backup hashes, leave running jobs alone.
func (s *Scheduler) ReloadTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	settings := s.settingService.GetAllSettings()
	specs := map[string]string{
		constants.SettingGithubBackupCron: strings.TrimSpace(settings[constants.SettingGithubBackupCron]),
		constants.SettingWebdavBackupCron: strings.TrimSpace(settings[constants.SettingWebdavBackupCron]),
	}
	if s.specs != nil && sameSpecs(s.specs, specs) {
		return
	}
	s.specs = specs

	if s.cron != nil {
		s.cron.Stop()
	}
	s.cron = cron.New()

	s.addBackupTask(specs[constants.SettingGithubBackupCron], "GitHub", func(ctx context.Context) error {
		current := s.settingService.GetAllSettings()
		repo := current[constants.SettingGithubRepo]
		branch := current[constants.SettingGithubBranch]
		token := current[constants.SettingGithubToken]
		if repo == "" || branch == "" || token == "" {
			return errors.New("GitHub backup is not fully configured")
		}
		return s.backupService.BackupToGithub(ctx, repo, branch, token)
	})

	s.addBackupTask(specs[constants.SettingWebdavBackupCron], "WebDAV", func(ctx context.Context) error {
		current := s.settingService.GetAllSettings()
		url := current[constants.SettingWebdavURL]
		if url == "" {
			return errors.New("WebDAV URL is not configured")
		}
		return s.backupService.BackupToWebdav(ctx, url, current[constants.SettingWebdavUser], current[constants.SettingWebdavPassword])
	})

	if len(s.cron.Entries()) > 0 {
		s.cron.Start()
		log.Println("backup jobs reloaded and started.")
	} else {
		log.Println("no backup jobs scheduled.")
	}
}

func (s *Scheduler) addBackupTask(spec, taskName string, backupFunc func(ctx context.Context) error) {
	if spec == "" {
		return
	}

	job := func() {
		log.Printf("running %s backup...", taskName)
		err := backupFunc(context.Background())
		if err != nil {
			if errors.Is(err, services.ErrBackupNoChange) {
				log.Printf("%s backup skipped: content unchanged.", taskName)
			} else {
				log.Printf("%s backup failed: %v", taskName, err)
			}
		} else {
			log.Printf("%s backup finished.", taskName)
		}
	}

	if _, err := s.cron.AddFunc(spec, recoveryWrapper(job)); err != nil {
		log.Printf("invalid %s backup schedule %q: %v", taskName, spec, err)
	} else {
		log.Printf("%s backup scheduled: %s", taskName, spec)
	}
}

func sameSpecs(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func recoveryWrapper(job func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("backup job panicked: %v\n%s", r, debug.Stack())
			}
		}()
		job()
	}
}
