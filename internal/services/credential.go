package services

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

const (
	// Well-known Azurite development account
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// storageTarget is a storage endpoint plus the table, container or queue
// the importer uses on it.
type storageTarget struct {
	url  string
	name string
}

// storageTargetFromEnv reads the endpoint from urlEnv (required) and the
// resource name from nameEnv, falling back to defaultName.
func storageTargetFromEnv(urlEnv, nameEnv, defaultName string) (storageTarget, error) {
	url := strings.TrimSpace(os.Getenv(urlEnv))
	if url == "" {
		return storageTarget{}, fmt.Errorf("%s environment variable is required", urlEnv)
	}
	name := strings.TrimSpace(os.Getenv(nameEnv))
	if name == "" {
		name = defaultName
	}
	return storageTarget{url: url, name: name}, nil
}

// local reports whether the endpoint is an emulator on plain http.
func (t storageTarget) local() bool {
	return isLocal(t.url)
}

func isLocal(serviceURL string) bool {
	return strings.HasPrefix(serviceURL, "http://")
}

// azuriteAccount returns the emulator account, honouring AZURITE_ACCOUNT_NAME
// and AZURITE_ACCOUNT_KEY for non-default emulator setups.
func azuriteAccount() (string, string) {
	name, key := azuriteAccountName, azuriteAccountKey
	if v := os.Getenv("AZURITE_ACCOUNT_NAME"); v != "" {
		name = v
	}
	if v := os.Getenv("AZURITE_ACCOUNT_KEY"); v != "" {
		key = v
	}
	return name, key
}

func newDefaultAzureCredential() (azcore.TokenCredential, error) {
	slog.Info("using default Azure credentials")
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create default azure credential: %w", err)
	}
	return cred, nil
}
