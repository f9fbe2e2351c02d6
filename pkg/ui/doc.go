// Package ui prints crawl progress and completion notices to the terminal.
package ui
