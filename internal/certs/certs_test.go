package certs

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(t *testing.T, cert tls.Certificate) *x509.Certificate {
	t.Helper()
	require.Len(t, cert.Certificate, 1)
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return x509Cert
}

func TestFileManager_GetOrCreateCertificate(t *testing.T) {
	tests := []struct {
		setup          func(t *testing.T, certDir string)
		validateResult func(t *testing.T, m *FileManager, cert tls.Certificate)
		name           string
		errorContains  string
		wantErr        bool
	}{
		{
			name:  "creates new certificate when none exists",
			setup: func(_ *testing.T, _ string) {},
			validateResult: func(t *testing.T, _ *FileManager, cert tls.Certificate) {
				t.Helper()
				x509Cert := leaf(t, cert)
				assert.Equal(t, "SpendScore", x509Cert.Subject.Organization[0])
				assert.Contains(t, x509Cert.DNSNames, "localhost")
				assert.True(t, x509Cert.NotAfter.After(time.Now().Add(364*24*time.Hour)))
				assert.NoError(t, x509Cert.VerifyHostname("127.0.0.1"))
			},
		},
		{
			name: "reuses existing valid certificate",
			setup: func(t *testing.T, certDir string) {
				t.Helper()
				_, err := NewFileManager(certDir).GetOrCreateCertificate()
				require.NoError(t, err)
			},
			validateResult: func(t *testing.T, m *FileManager, cert tls.Certificate) {
				t.Helper()
				stored, err := tls.LoadX509KeyPair(m.certFile, m.keyFile)
				require.NoError(t, err)
				assert.Equal(t, stored.Certificate[0], cert.Certificate[0])
			},
		},
		{
			name: "regenerates unreadable certificate",
			setup: func(t *testing.T, certDir string) {
				t.Helper()
				require.NoError(t, os.MkdirAll(certDir, 0700))
				require.NoError(t, os.WriteFile(filepath.Join(certDir, "spendscore.crt"), []byte("invalid certificate data"), 0600))
				require.NoError(t, os.WriteFile(filepath.Join(certDir, "spendscore.key"), []byte("invalid key data"), 0600))
			},
			validateResult: func(t *testing.T, _ *FileManager, cert tls.Certificate) {
				t.Helper()
				assert.True(t, leaf(t, cert).NotBefore.After(time.Now().Add(-2*time.Minute)))
			},
		},
		{
			name: "fails when the directory is a file",
			setup: func(t *testing.T, certDir string) {
				t.Helper()
				require.NoError(t, os.MkdirAll(filepath.Dir(certDir), 0700))
				require.NoError(t, os.WriteFile(certDir, []byte("not a directory"), 0600))
			},
			wantErr:       true,
			errorContains: "failed to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certDir := filepath.Join(t.TempDir(), "certs")
			tt.setup(t, certDir)

			m := NewFileManager(certDir)
			cert, err := m.GetOrCreateCertificate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			tt.validateResult(t, m, cert)
		})
	}
}

func TestFileManager_RegeneratesExpired(t *testing.T) {
	certDir := t.TempDir()
	m := NewFileManager(certDir)
	m.now = func() time.Time { return time.Now().Add(-2 * DefaultValidity) }

	old, err := m.GetOrCreateCertificate()
	require.NoError(t, err)
	assert.True(t, leaf(t, old).NotAfter.Before(time.Now()))

	fresh, err := NewFileManager(certDir).GetOrCreateCertificate()
	require.NoError(t, err)
	assert.True(t, leaf(t, fresh).NotAfter.After(time.Now()))
}

func TestFileManager_ExtraHosts(t *testing.T) {
	certDir := t.TempDir()
	_, err := NewFileManager(certDir).GetOrCreateCertificate()
	require.NoError(t, err)

	// The stored certificate does not cover the new host, so it is replaced.
	cert, err := NewFileManager(certDir, "spendscore.lan", "10.0.0.5").GetOrCreateCertificate()
	require.NoError(t, err)

	x509Cert := leaf(t, cert)
	assert.Contains(t, x509Cert.DNSNames, "spendscore.lan")
	assert.True(t, containsIP(x509Cert.IPAddresses, net.ParseIP("10.0.0.5")))
}

func TestFileManager_CertificateExists(t *testing.T) {
	certDir := t.TempDir()
	m := NewFileManager(certDir)

	exists, err := m.CertificateExists()
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = m.GetOrCreateCertificate()
	require.NoError(t, err)

	exists, err = m.CertificateExists()
	require.NoError(t, err)
	assert.True(t, exists)

	info, err := os.Stat(m.keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func containsIP(ips []net.IP, want net.IP) bool {
	for _, ip := range ips {
		if ip.Equal(want) {
			return true
		}
	}
	return false
}
