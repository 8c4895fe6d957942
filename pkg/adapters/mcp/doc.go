// Package mcp exposes the engine as Model Context Protocol tools.
package mcp
