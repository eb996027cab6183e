package services

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shieldsite/internal/constants"
	"shieldsite/internal/contenttree"
	"shieldsite/internal/models"
	"shieldsite/internal/repository"

	"github.com/google/go-github/v39/github"
	ezip "github.com/yeka/zip"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

var ErrBackupNoChange = errors.New("content unchanged since the last backup")

const backupEntryName = "backup.json"

// BackupService archives the site content tree, every page section and the
// settings, and ships the archive to GitHub or WebDAV.
type BackupService struct {
	db             *gorm.DB
	contentService *ContentService
	sectionRepo    *repository.SectionRepository
	settingService *SettingService
	httpClient     *http.Client
}

func NewBackupService(db *gorm.DB, contentService *ContentService, sectionRepo *repository.SectionRepository, settingService *SettingService) *BackupService {
	return &BackupService{
		db:             db,
		contentService: contentService,
		sectionRepo:    sectionRepo,
		settingService: settingService,
		httpClient:     &http.Client{Timeout: 120 * time.Second},
	}
}

// Snapshot collects the current site state. The tree is read from storage, not
// from the cache, so the archive matches what is persisted.
func (s *BackupService) Snapshot(ctx context.Context) (*models.SiteBackup, error) {
	sections, err := s.sectionRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}

	content, err := s.contentService.Load(ctx)
	if err != nil {
		return nil, err
	}

	settings := s.settingService.GetAllSettings()
	delete(settings, constants.SettingGithubLastBackupHash)
	delete(settings, constants.SettingWebdavLastBackupHash)

	return &models.SiteBackup{
		Content:  content,
		Sections: sections,
		Settings: settings,
	}, nil
}

// encoding/json sorts map keys, so equal snapshots hash equally.
func (s *BackupService) snapshotAndHash(ctx context.Context) (*models.SiteBackup, string, error) {
	backup, err := s.Snapshot(ctx)
	if err != nil {
		return nil, "", err
	}
	jsonData, err := json.Marshal(backup)
	if err != nil {
		return nil, "", fmt.Errorf("encode backup: %w", err)
	}
	hash := sha256.Sum256(jsonData)
	return backup, hex.EncodeToString(hash[:]), nil
}

// Archive returns a plain zip holding backup.json, for download from the panel.
func (s *BackupService) Archive(ctx context.Context) ([]byte, error) {
	backup, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	jsonData, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}

	buf := new(bytes.Buffer)
	zipWriter := zip.NewWriter(buf)
	zipFile, err := zipWriter.Create(backupEntryName)
	if err != nil {
		return nil, fmt.Errorf("create zip entry: %w", err)
	}
	if _, err := zipFile.Write(jsonData); err != nil {
		return nil, fmt.Errorf("write zip entry: %w", err)
	}
	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadArchive decodes a backup from either a zip holding backup.json or bare JSON.
func ReadArchive(data []byte) (*models.SiteBackup, error) {
	var jsonReader io.Reader = bytes.NewReader(data)
	if zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		var entry *zip.File
		for _, f := range zipReader.File {
			if f.Name == backupEntryName {
				entry = f
				break
			}
		}
		if entry == nil {
			return nil, fmt.Errorf("%s not found in archive", backupEntryName)
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", backupEntryName, err)
		}
		defer rc.Close()
		jsonReader = rc
	}

	var backup models.SiteBackup
	if err := json.NewDecoder(jsonReader).Decode(&backup); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return &backup, nil
}

// Restore replaces the content tree and every section with the backup's, in one
// transaction. Settings are left alone.
func (s *BackupService) Restore(ctx context.Context, backup *models.SiteBackup, restoredBy string) error {
	tree := contenttree.Normalize(backup.Content)
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode site content: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txContent := repository.NewContentRepository(tx)
		txSections := repository.NewSectionRepository(tx)
		if err := txContent.Replace(ctx, &models.SiteContent{Content: data, UpdatedBy: restoredBy}); err != nil {
			return err
		}
		return txSections.ReplaceAll(ctx, backup.Sections)
	})
	if err != nil {
		return fmt.Errorf("%w: restore backup: %w", ErrPersistence, err)
	}

	s.contentService.LoadLive(ctx)
	return nil
}

func (s *BackupService) BackupToGithub(ctx context.Context, repoName, branch, token string) error {
	backupData, newHash, err := s.snapshotAndHash(ctx)
	if err != nil {
		return err
	}
	if newHash == s.settingService.GetSetting(constants.SettingGithubLastBackupHash) {
		return ErrBackupNoChange
	}

	backupContent, err := s.createEncryptedBackup(backupData)
	if err != nil {
		return fmt.Errorf("create backup archive: %w", err)
	}

	owner, repo, err := splitRepoName(repoName)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("site_backup_%s.zip", time.Now().Format("20060102150405"))
	message := "Automated site content backup"

	client := githubClient(ctx, token)
	opts := &github.RepositoryContentFileOptions{
		Message: &message,
		Content: backupContent,
		Branch:  &branch,
	}

	_, _, err = client.Repositories.CreateFile(ctx, owner, repo, path, opts)
	if err != nil {
		fileContent, _, _, getErr := client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: branch})
		if getErr != nil || fileContent == nil {
			return fmt.Errorf("create file on GitHub: %w", err)
		}
		opts.SHA = fileContent.SHA
		if _, _, updateErr := client.Repositories.UpdateFile(ctx, owner, repo, path, opts); updateErr != nil {
			return fmt.Errorf("update file on GitHub: %w", updateErr)
		}
	}

	return s.settingService.UpdateSettings(ctx, map[string]string{
		constants.SettingGithubLastBackupHash: newHash,
	})
}

func (s *BackupService) BackupToWebdav(ctx context.Context, url, user, password string) error {
	backupData, newHash, err := s.snapshotAndHash(ctx)
	if err != nil {
		return err
	}
	if newHash == s.settingService.GetSetting(constants.SettingWebdavLastBackupHash) {
		return ErrBackupNoChange
	}

	backupContent, err := s.createEncryptedBackup(backupData)
	if err != nil {
		return fmt.Errorf("create backup archive: %w", err)
	}

	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	fullURL := url + fmt.Sprintf("site_backup_%s.zip", time.Now().Format("20060102150405"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, fullURL, bytes.NewReader(backupContent))
	if err != nil {
		return fmt.Errorf("build WebDAV request: %w", err)
	}
	if user != "" && password != "" {
		req.SetBasicAuth(user, password)
	}
	req.Header.Set("Content-Type", "application/zip")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload to WebDAV: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("WebDAV server returned %s: %s", resp.Status, string(body))
	}

	return s.settingService.UpdateSettings(ctx, map[string]string{
		constants.SettingWebdavLastBackupHash: newHash,
	})
}

// createEncryptedBackup zips the backup with AES-256 under the admin password.
func (s *BackupService) createEncryptedBackup(backupData *models.SiteBackup) ([]byte, error) {
	password := s.settingService.GetSetting(constants.SettingPassword)
	if password == "" {
		return nil, errors.New("admin password is not set, cannot encrypt the backup")
	}

	jsonData, err := json.MarshalIndent(backupData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}

	buf := new(bytes.Buffer)
	zipWriter := ezip.NewWriter(buf)
	zipFile, err := zipWriter.Encrypt(backupEntryName, password, ezip.AES256Encryption)
	if err != nil {
		return nil, fmt.Errorf("create encrypted zip entry: %w", err)
	}
	if _, err := zipFile.Write(jsonData); err != nil {
		return nil, fmt.Errorf("write zip entry: %w", err)
	}
	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *BackupService) TestGithubConnection(ctx context.Context, repoName, token string) error {
	if repoName == "" || token == "" {
		return errors.New("repository and token are required")
	}
	owner, repo, err := splitRepoName(repoName)
	if err != nil {
		return err
	}

	client := githubClient(ctx, token)
	if _, _, err := client.Repositories.Get(ctx, owner, repo); err != nil {
		if _, _, userErr := client.Users.Get(ctx, ""); userErr != nil {
			return fmt.Errorf("token rejected by GitHub: %v", userErr)
		}
		return fmt.Errorf("cannot access repository %s: %v", repoName, err)
	}
	return nil
}

func (s *BackupService) TestWebdavConnection(ctx context.Context, url, user, password string) error {
	if url == "" {
		return errors.New("server URL is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %v", err)
	}
	if user != "" && password != "" {
		req.SetBasicAuth(user, password)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connect to WebDAV server: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("WebDAV server returned %s", resp.Status)
}

func splitRepoName(repoName string) (owner, repo string, err error) {
	parts := strings.Split(repoName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q, want owner/repo", repoName)
	}
	return parts[0], parts[1], nil
}

func githubClient(ctx context.Context, token string) *github.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}
