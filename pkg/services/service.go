package service

import (
	"context"
	"errors"
	"sync"
)

type Logger interface {
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Info(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

type (
	Service interface {
		Init() error
		Run(ctx context.Context) error
		Stop()
	}
	Services interface {
		AddService(service ...Service)
		Run(ctx context.Context) error
	}
	Manager struct {
		log      Logger
		services []Service
	}
)

func NewManager(log Logger) Services {
	return &Manager{log: log}
}

func (s *Manager) AddService(service ...Service) {
	s.services = append(s.services, service...)
}

// Run initialises every service in order, runs them concurrently and stops
// all of them once ctx is done or any service fails.
func (s *Manager) Run(ctx context.Context) error {
	s.log.Info("going to start services")
	for count, service := range s.services {
		if err := service.Init(); err != nil {
			for _, started := range s.services[:count] {
				started.Stop()
			}
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, len(s.services))
	var wg sync.WaitGroup
	for _, service := range s.services {
		wg.Add(1)
		go func(service Service) {
			defer wg.Done()
			if err := service.Run(ctx); err != nil {
				errs <- err
			}
		}(service)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errs:
		s.log.Error("service failed: %v", runErr)
	}

	s.stop()
	cancel()
	wg.Wait()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func (s *Manager) stop() {
	s.log.Info("going to stop")
	for i := len(s.services) - 1; i >= 0; i-- {
		s.services[i].Stop()
	}
}
