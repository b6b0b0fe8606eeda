package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLookupRedHat returns the RHEL 6 pinned dependency list.
func TestLookupRedHat(t *testing.T) {
	t.Parallel()

	p, err := Lookup(Linux, RedHat, 6, 0)
	require.NoError(t, err)
	require.Equal(t, FormatRPM, p.Format)
	require.Equal(t, "rhel", p.Tag)
	require.Equal(t, "glibc >= 2.12-1.7, openssl >= 1.0.0-4, pam >= 1.1.1-4, redhat-lsb >= 4.0-2.1", p.Requires)
	require.True(t, p.Startup.Templated)
}

// TestLookupUnsupported fails for versions missing from the table.
func TestLookupUnsupported(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		platform, distro string
		major            int
	}{
		{Linux, RedHat, 99},
		{Linux, SUSE, 12},
		{Linux, "GENTOO", 1},
		{"Plan9", "", 4},
	} {
		_, err := Lookup(tc.platform, tc.distro, tc.major, 0)
		require.ErrorIs(t, err, ErrUnsupportedPlatform, "%+v", tc)
	}
}

// TestLookupUbuntuAnyVersion matches every Ubuntu release.
func TestLookupUbuntuAnyVersion(t *testing.T) {
	t.Parallel()

	for _, major := range []int{6, 8, 10} {
		p, err := Lookup(Linux, Ubuntu, major, 4)
		require.NoError(t, err)
		require.Equal(t, FormatDEB, p.Format)
	}
}

// TestLookupSolarisMinorThreshold picks legacy init scripts below 5.10.
func TestLookupSolarisMinorThreshold(t *testing.T) {
	t.Parallel()

	legacy, err := Lookup(SunOS, "", 5, 9)
	require.NoError(t, err)
	require.Len(t, legacy.Startup.Links, 1)
	require.Nil(t, legacy.Startup.Manifest)
	require.True(t, legacy.AdminLink)

	smf, err := Lookup(SunOS, "ignored", 5, 10)
	require.NoError(t, err)
	require.NotNil(t, smf.Startup.Manifest)
	require.False(t, smf.AdminLink)
}

// TestSharedLibrarySuffix applies architecture overrides.
func TestSharedLibrarySuffix(t *testing.T) {
	t.Parallel()

	hpux, err := Lookup(HPUX, "", 11, 0)
	require.NoError(t, err)
	require.Equal(t, "sl", hpux.SharedLibrarySuffix("pa-risc"))
	require.Equal(t, "so", hpux.SharedLibrarySuffix("ia64"))

	mac, err := Lookup(MacOS, "", 10, 5)
	require.NoError(t, err)
	require.Equal(t, "dylib", mac.SharedLibrarySuffix("x86"))
	require.Equal(t, "wheel", mac.RootGroup)

	aix, err := Lookup(AIX, "", 6, 1)
	require.NoError(t, err)
	require.Equal(t, "system", aix.RootGroup)
}

// TestServiceCommand formats registration commands per service.
func TestServiceCommand(t *testing.T) {
	t.Parallel()

	p, err := Lookup(Linux, Ubuntu, 10, 4)
	require.NoError(t, err)
	require.Equal(t, "update-rc.d scx-wsmand defaults", ServiceCommand(p.ServiceAdd, "scx-wsmand"))
	require.Equal(t, "update-rc.d -f scx-cimd remove", ServiceCommand(p.ServiceRemove, "scx-cimd"))
	require.Empty(t, ServiceCommand("", "scx-cimd"))
}
