// Copyright 2025 Dave Lage (rockerBOO)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/directories"
	"github.com/MDBrothers/ada-mcp-bridge/logger"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"
	"github.com/MDBrothers/ada-mcp-bridge/mcpserver"
	"github.com/MDBrothers/ada-mcp-bridge/security"

	"github.com/mark3labs/mcp-go/server"
)

// tryLoadConfig attempts to load configuration from multiple locations with
// security validation, preferring the primary (flag-supplied or default)
// path and falling back to a small set of conventional alternatives.
func tryLoadConfig(primaryPath, configDir string) (*lsp.LSPServerConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}
	allowed := security.GetConfigAllowedDirectories(configDir, cwd)

	if config, err := lsp.LoadLSPConfig(primaryPath, allowed); err == nil {
		return config, nil
	}

	fallbackPaths := []string{
		"lsp_config.json",
		filepath.Join(configDir, "config.json"),
		"lsp_config.example.json",
	}
	for _, fallbackPath := range fallbackPaths {
		if fallbackPath == primaryPath {
			continue
		}
		if config, err := lsp.LoadLSPConfig(fallbackPath, allowed); err == nil {
			logger.Info("loaded configuration from fallback location {Path}", fallbackPath)
			return config, nil
		}
	}

	return nil, errors.New("no valid configuration found")
}

// validateCommandLineArgs rejects config/log paths that resolve outside the
// operator-controlled allow-list before anything touches the filesystem.
func validateCommandLineArgs(confPath, logPath, configDir, logDir string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	if confPath != "" {
		allowed := security.GetConfigAllowedDirectories(configDir, cwd)
		if _, err := security.ValidateConfigPath(confPath, allowed); err != nil {
			return fmt.Errorf("invalid config path: %w", err)
		}
	}

	if logPath != "" {
		allowed := []string{logDir, cwd, "."}
		if _, err := security.ValidateConfigPath(logPath, allowed); err != nil {
			return fmt.Errorf("invalid log path: %w", err)
		}
	}

	return nil
}

func main() {
	dirResolver := directories.NewDirectoryResolver(
		"ada-mcp-bridge", directories.DefaultUserProvider{}, directories.DefaultEnvProvider{}, true)

	configDir, err := dirResolver.GetConfigDirectory()
	if err != nil {
		log.Fatalf("failed to get config directory: %v", err)
	}
	logDir, err := dirResolver.GetLogDirectory()
	if err != nil {
		log.Fatalf("failed to get log directory: %v", err)
	}

	defaultConfigPath := filepath.Join(configDir, "lsp_config.json")
	defaultLogPath := filepath.Join(logDir, "ada-mcp-bridge.log")

	var confPath, logPath, logLevel string
	flag.StringVar(&confPath, "config", defaultConfigPath, "Path to LSP configuration file")
	flag.StringVar(&confPath, "c", defaultConfigPath, "Path to LSP configuration file (short)")
	flag.StringVar(&logPath, "log-path", "", "Path to log file (overrides config and default)")
	flag.StringVar(&logPath, "l", "", "Path to log file (short)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	if err := validateCommandLineArgs(confPath, logPath, configDir, logDir); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: invalid command line arguments: %v\n", err)
		os.Exit(1)
	}

	config, err := tryLoadConfig(confPath, configDir)
	var logConfig logger.Config
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load LSP config from %q: %v\n", confPath, err)
		fmt.Fprintln(os.Stderr, "NOTICE: using minimal default configuration, LSP functionality will be limited")
		config = lsp.DefaultConfig(defaultLogPath)
		logConfig = logger.Config{LogPath: defaultLogPath, LogLevel: "debug", MaxLogFiles: 10}
	} else {
		logConfig = logger.Config{
			LogPath:     config.Global.LogPath,
			LogLevel:    config.Global.LogLevel,
			MaxLogFiles: config.Global.MaxLogFiles,
		}
	}

	// Allow runtime tuning from outside (e.g. an MCP client's env block)
	// without editing the config file the process was started with.
	lsp.ApplyEnvOverrides(config)
	logConfig.LogLevel = config.Global.LogLevel

	if logPath != "" {
		logConfig.LogPath = logPath
	}
	if logLevel != "" {
		logConfig.LogLevel = logLevel
	}
	if logConfig.LogPath == "" {
		logConfig.LogPath = defaultLogPath
	}

	if err := logger.Init(logConfig); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Close()

	logger.Info("starting ada-mcp-bridge")

	cwd, err := os.Getwd()
	if err != nil {
		panic("failed to get current working directory: " + err.Error())
	}

	// Anchor workspace operations to an explicit mount point when the
	// process runs detached from the caller's own working directory.
	allowedDirs := []string{cwd}
	if workspaceRoot := os.Getenv("WORKSPACE_ROOT"); workspaceRoot != "" {
		allowedDirs = []string{workspaceRoot}
	}

	bridgeInstance := bridge.NewMCPLSPBridge(config, allowedDirs)
	mcpServer := mcpserver.SetupMCPServer(bridgeInstance)
	bridgeInstance.SetServer(mcpServer)
	bridgeInstance.StartWatcher(confPath, lsp.ResolveProjectFile(lsp.ResolveProjectRoot(""), ""))
	defer bridgeInstance.Shutdown(context.Background())

	// Warm the pool synchronously before the MCP server starts reading
	// stdin: a client that closes stdin right after its first request
	// (common under a process-supervised launch) must not race a cold
	// language-server bootstrap.
	logger.Info("connecting to the Ada language server")
	if err := bridgeInstance.SyncAutoConnect(); err != nil {
		logger.Warn("initial language server connection failed: {Error}", err.Error())
	}
	logger.Info("language server connection ready")

	logger.Info("starting MCP server")
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("MCP server error: {Error}", err.Error())
	}
}
