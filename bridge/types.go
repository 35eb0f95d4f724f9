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
package bridge

import (
	"sync"

	"github.com/MDBrothers/ada-mcp-bridge/lsp"
	"github.com/MDBrothers/ada-mcp-bridge/types"

	"github.com/mark3labs/mcp-go/server"
)

// MCPLSPBridge is the single façade the MCP tool handlers call through: it
// owns the pooled Ada language server connections and the allow-listed
// filesystem boundary those connections may touch. Where the original
// bridge held one client per configured language, this one holds a single
// project-keyed pool, since this bridge only ever speaks to one language
// server implementation.
type MCPLSPBridge struct {
	pool               *lsp.Pool
	config             types.LSPServerConfigProvider
	allowedDirectories []string
	watcher            *ConfigWatcher

	mu     sync.RWMutex
	server *server.MCPServer
}
