// Package linkage describes how the native JavaScriptCore library is found on
// each supported platform and checks that it is installed.
//
// The table is data, not code: platforms.yaml is embedded at build time and
// can be replaced with Load for packagers that ship JavaScriptCore somewhere
// else. Probe runs pkg-config the same way cgo does, so a failed probe
// predicts a failed build and names the package to install.
package linkage
