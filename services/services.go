// Package services holds the process-wide collaborators the HTTP handlers
// reach for, the way config.AppConfig holds the configuration.
package services

import (
	"learnfront/catalog"
	"learnfront/enrollment"
	"learnfront/session"
	"learnfront/utils"
)

type Services struct {
	Sessions   *session.Manager
	Catalog    *catalog.Catalog
	Enrollment *enrollment.Flow
	Logger     *utils.Logger

	// MediaBase resolves relative media paths in rendered content
	MediaBase string
}

// App is set once at startup
var App *Services

func Init(s *Services) *Services {
	if s.Logger == nil {
		s.Logger = utils.NewNopLogger()
	}
	App = s
	return s
}
