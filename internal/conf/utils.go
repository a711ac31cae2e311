// conf/utils.go
package conf

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
)

// GetDefaultConfigPaths returns the OS-conventional search paths for config.yaml.
func GetDefaultConfigPaths() ([]string, error) {
	var configPaths []string

	exePath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("error fetching executable path: %w", err)
	}
	exeDir := filepath.Dir(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		configPaths = []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", "micasr"),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "micasr"),
			"/etc/micasr",
		}
	}

	return configPaths, nil
}

// GetBasePath expands environment variables in path and ensures it exists.
func GetBasePath(path string) string {
	expandedPath := os.ExpandEnv(path)
	basePath := filepath.Clean(expandedPath)

	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		if err := os.MkdirAll(basePath, 0o755); err != nil { //nolint:gosec // config/log dirs are not secret
			fmt.Printf("failed to create directory '%s': %v\n", basePath, err)
		}
	}

	return basePath
}

// PrintUserInfo warns on Linux if the running user lacks "audio" group
// membership, which malgo capture devices typically require.
func PrintUserInfo() {
	if runtime.GOOS != "linux" {
		return
	}

	currentUser, err := user.Current()
	if err != nil {
		fmt.Printf("failed to get current user: %v\n", err)
		return
	}
	if currentUser.Username == "root" {
		return
	}

	groupIDs, err := currentUser.GroupIds()
	if err != nil {
		log.Printf("failed to get group memberships: %v", err)
		return
	}

	audioMember := false
	for _, gid := range groupIDs {
		group, err := user.LookupGroupId(gid)
		if err != nil {
			continue
		}
		if group.Name == "audio" {
			audioMember = true
			break
		}
	}
	if !audioMember {
		log.Printf("user %q is not a member of the audio group; microphone capture may fail", currentUser.Username)
		log.Println("sudo usermod -a -G audio", currentUser.Username)
	}
}

// RunningInContainer reports whether the process appears to be running
// inside a Docker or Podman container.
func RunningInContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if _, err := os.Stat("/run/.containerenv"); err == nil {
		return true
	}
	if containerEnv, exists := os.LookupEnv("container"); exists && containerEnv != "" {
		return true
	}

	file, err := os.Open("/proc/self/cgroup")
	if err != nil {
		return false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "docker") || strings.Contains(line, "podman") {
			return true
		}
	}

	return false
}
