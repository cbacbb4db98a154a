package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/temirov/autopush/internal/runlog"
	"github.com/temirov/autopush/internal/version"
)

const (
	gitDirectoryNameConstant             = ".git"
	watcherCreationErrorTemplateConstant = "unable to create file watcher: %w"
	watcherRegisterErrorTemplateConstant = "unable to watch %s: %w"
	watcherLoggerRequiredConstant        = "file watcher requires a logger"
	logMessageWatchRegisteredConstant    = "Watching repository for changes"
	logMessageChangeObservedConstant     = "File change observed"
	logFieldWatchedPathConstant          = "path"
	logFieldChangedPathConstant          = "changed_path"
	triggerChannelCapacityConstant       = 1
)

// ErrWatcherLoggerNotConfigured reports a watcher constructed without a logger.
var ErrWatcherLoggerNotConfigured = errors.New(watcherLoggerRequiredConstant)

// FileWatcher converts filesystem events beneath a repository into debounced triggers.
type FileWatcher struct {
	logger           *zap.Logger
	repositoryPath   string
	debounceInterval time.Duration
	triggerChannel   chan struct{}
	ignoredNames     map[string]struct{}
}

// NewFileWatcher constructs a FileWatcher for the repository root.
func NewFileWatcher(logger *zap.Logger, repositoryPath string, debounceInterval time.Duration) (*FileWatcher, error) {
	if logger == nil {
		return nil, ErrWatcherLoggerNotConfigured
	}
	if debounceInterval <= 0 {
		debounceInterval = DefaultDebounceInterval
	}

	return &FileWatcher{
		logger:           logger,
		repositoryPath:   repositoryPath,
		debounceInterval: debounceInterval,
		triggerChannel:   make(chan struct{}, triggerChannelCapacityConstant),
		ignoredNames: map[string]struct{}{
			gitDirectoryNameConstant:          {},
			runlog.DefaultJournalFileName:     {},
			runlog.DefaultReportDirectoryName: {},
			version.DefaultFileName:           {},
		},
	}, nil
}

// Triggers exposes the debounced change notifications.
func (watcher *FileWatcher) Triggers() <-chan struct{} {
	return watcher.triggerChannel
}

// Start watches the repository tree until the context is cancelled.
func (watcher *FileWatcher) Start(executionContext context.Context) error {
	notifier, creationError := fsnotify.NewWatcher()
	if creationError != nil {
		return fmt.Errorf(watcherCreationErrorTemplateConstant, creationError)
	}
	defer func() { _ = notifier.Close() }()

	if registrationError := watcher.registerDirectories(notifier); registrationError != nil {
		return registrationError
	}

	watcher.logger.Info(logMessageWatchRegisteredConstant, zap.String(logFieldWatchedPathConstant, watcher.repositoryPath))

	var debounceTimer *time.Timer
	var debounceChannel <-chan time.Time

	for {
		select {
		case <-executionContext.Done():
			return nil
		case notifierEvent, channelOpen := <-notifier.Events:
			if !channelOpen {
				return nil
			}
			if watcher.isIgnored(notifierEvent.Name) {
				continue
			}
			watcher.logger.Debug(logMessageChangeObservedConstant, zap.String(logFieldChangedPathConstant, notifierEvent.Name))

			if notifierEvent.Op.Has(fsnotify.Create) {
				watcher.registerIfDirectory(notifier, notifierEvent.Name)
			}

			if debounceTimer == nil {
				debounceTimer = time.NewTimer(watcher.debounceInterval)
			} else {
				debounceTimer.Reset(watcher.debounceInterval)
			}
			debounceChannel = debounceTimer.C
		case <-debounceChannel:
			debounceChannel = nil
			select {
			case watcher.triggerChannel <- struct{}{}:
			default:
			}
		case _, channelOpen := <-notifier.Errors:
			if !channelOpen {
				return nil
			}
		}
	}
}

func (watcher *FileWatcher) registerDirectories(notifier *fsnotify.Watcher) error {
	return filepath.WalkDir(watcher.repositoryPath, func(walkedPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !directoryEntry.IsDir() {
			return nil
		}
		if watcher.isIgnored(walkedPath) {
			return filepath.SkipDir
		}
		if registrationError := notifier.Add(walkedPath); registrationError != nil {
			return fmt.Errorf(watcherRegisterErrorTemplateConstant, walkedPath, registrationError)
		}
		return nil
	})
}

func (watcher *FileWatcher) registerIfDirectory(notifier *fsnotify.Watcher, candidatePath string) {
	fileInformation, statError := os.Stat(candidatePath)
	if statError != nil || !fileInformation.IsDir() {
		return
	}
	_ = notifier.Add(candidatePath)
}

func (watcher *FileWatcher) isIgnored(candidatePath string) bool {
	for _, pathSegment := range strings.Split(filepath.ToSlash(candidatePath), "/") {
		if _, ignored := watcher.ignoredNames[pathSegment]; ignored {
			return true
		}
	}
	return false
}
