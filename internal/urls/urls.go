package urls

// Documentation URLs for guides and troubleshooting
// All URLs point to the documentation site at https://bedrockmgr.github.io/bsmctl/

// GettingStarted is the quick start guide for connecting bsmctl
// to a Bedrock Server Manager instance.
const GettingStarted = "https://bedrockmgr.github.io/bsmctl/getting-started/"

// ManagerSetup covers installing and exposing the manager itself,
// including the HTTP API and mDNS advertisement.
const ManagerSetup = "https://bedrockmgr.github.io/bsmctl/manager-setup/"

// Troubleshooting provides solutions to common connection and
// authentication issues.
const Troubleshooting = "https://bedrockmgr.github.io/bsmctl/troubleshooting/"

// Discovery explains how mDNS discovery works and what to check
// when no managers are found on the network.
const Discovery = "https://bedrockmgr.github.io/bsmctl/discovery/"

// BackupsGuide documents backup types, restore semantics, and
// pruning behavior.
const BackupsGuide = "https://bedrockmgr.github.io/bsmctl/backups/"
