package pyroscope

import (
	"context"
	"strings"

	"github.com/flexprice/recurring/internal/config"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/fx"
)

type Service struct {
	cfg      *config.PyroscopeConfig
	logger   *logger.Logger
	profiler *pyroscope.Profiler
}

// Module provides fx options for Pyroscope
func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewPyroscopeService),
		fx.Invoke(RegisterHooks),
	)
}

// RegisterHooks starts continuous profiling with the application when enabled
func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return svc.Start()
		},
		OnStop: func(ctx context.Context) error {
			return svc.Stop()
		},
	})
}

// NewPyroscopeService creates a new Pyroscope service
func NewPyroscopeService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{
		cfg:    &cfg.Pyroscope,
		logger: logger,
	}
}

func (s *Service) Start() error {
	if !s.IsEnabled() {
		s.logger.Info("Pyroscope profiling is disabled")
		return nil
	}

	profileTypes := s.getProfileTypes()
	pyroscopeConfig := pyroscope.Config{
		ApplicationName: s.cfg.ApplicationName,
		ServerAddress:   s.cfg.ServerAddress,
		ProfileTypes:    profileTypes,
		SampleRate:      s.cfg.SampleRate,
		DisableGCRuns:   s.cfg.DisableGCRuns,
		Logger:          s,
	}
	if s.cfg.BasicAuthUser != "" {
		pyroscopeConfig.BasicAuthUser = s.cfg.BasicAuthUser
		pyroscopeConfig.BasicAuthPassword = s.cfg.BasicAuthPass
	}

	profiler, err := pyroscope.Start(pyroscopeConfig)
	if err != nil {
		s.logger.Errorw("Failed to initialize Pyroscope", "error", err)
		return err
	}
	s.logger.Infow("Pyroscope profiling started",
		"application_name", s.cfg.ApplicationName,
		"server_address", s.cfg.ServerAddress,
		"has_basic_auth", s.cfg.BasicAuthUser != "",
		"profile_types", profileTypes,
	)
	s.profiler = profiler
	return nil
}

func (s *Service) Stop() error {
	if s.profiler == nil {
		return nil
	}
	s.logger.Info("Stopping Pyroscope profiling")
	return s.profiler.Stop()
}

func (s *Service) Debugf(format string, args ...interface{}) {
	s.logger.Debugf("[Pyroscope] "+format, args...)
}

func (s *Service) Infof(format string, args ...interface{}) {
	s.logger.Infof("[Pyroscope] "+format, args...)
}

func (s *Service) Errorf(format string, args ...interface{}) {
	s.logger.Errorf("[Pyroscope] "+format, args...)
}

func (s *Service) IsEnabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

func (s *Service) getProfileTypes() []pyroscope.ProfileType {
	if len(s.cfg.ProfileTypes) == 0 {
		return []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileGoroutines,
		}
	}

	known := map[string]pyroscope.ProfileType{
		"cpu":            pyroscope.ProfileCPU,
		"inuse_objects":  pyroscope.ProfileInuseObjects,
		"alloc_objects":  pyroscope.ProfileAllocObjects,
		"inuse_space":    pyroscope.ProfileInuseSpace,
		"alloc_space":    pyroscope.ProfileAllocSpace,
		"goroutines":     pyroscope.ProfileGoroutines,
		"mutex_count":    pyroscope.ProfileMutexCount,
		"mutex_duration": pyroscope.ProfileMutexDuration,
		"block_count":    pyroscope.ProfileBlockCount,
		"block_duration": pyroscope.ProfileBlockDuration,
	}

	var types []pyroscope.ProfileType
	for _, name := range s.cfg.ProfileTypes {
		pt, ok := known[strings.ToLower(name)]
		if !ok {
			s.logger.Warnw("Unknown profile type", "type", name)
			continue
		}
		types = append(types, pt)
	}
	return types
}

// TagWrapper runs fn with profiling labels so samples can be filtered per job
func (s *Service) TagWrapper(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	if !s.IsEnabled() {
		fn(ctx)
		return
	}

	var labelPairs []string
	for key, value := range labels {
		labelPairs = append(labelPairs, key, value)
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(labelPairs...), fn)
}
