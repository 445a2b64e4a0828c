// Package provider maps hosting platforms to their source adapters.
package provider

import (
	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/provider/bitbucket"
	"github.com/jmalmgren/repodeck/internal/provider/github"
	"github.com/jmalmgren/repodeck/internal/provider/gitlab"
)

// Sources returns one source adapter per supported platform.
func Sources() map[domain.Platform]domain.Source {
	return map[domain.Platform]domain.Source{
		domain.PlatformGitHub:    github.NewSource(),
		domain.PlatformGitLab:    gitlab.NewSource(),
		domain.PlatformBitbucket: bitbucket.NewSource(),
	}
}
