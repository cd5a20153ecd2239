// Copyright 2025 The pmcpctl Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

// Process exit codes returned by Execute.
const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitTimedOut = 124
)

// Values accepted by --output.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)

var OutputFormats = []string{OutputFormatTable, OutputFormatJSON, OutputFormatYAML}

// ToolName is reported in the metadata block of structured output.
const ToolName = "pmcpctl"

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"
