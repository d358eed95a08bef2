// Package probe reads the process resource facts that bootstrap checks
// compare against: configured heap sizes, file descriptor, thread and
// virtual memory limits, and whether memory is locked.
//
// Values a platform cannot report are returned as documented sentinels
// (Unknown, UnknownVirtualMemory, or 0 for heap sizes) rather than as
// errors. An error means the accessor itself failed.
package probe
