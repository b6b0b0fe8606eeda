//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	"github.com/oshokin/scx-installer/internal/domain/build"
)

// DetectActor gathers host, user and primary group of the invoking user.
// The group name is what the staging tree is handed back to after a build.
func DetectActor() (*build.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	group, err := user.LookupGroupId(currentUser.Gid)
	if err != nil {
		return nil, fmt.Errorf("primary group %s: %w", currentUser.Gid, err)
	}

	return &build.Actor{
		Hostname: hostname,
		Username: currentUser.Username,
		Group:    group.Name,
	}, nil
}
