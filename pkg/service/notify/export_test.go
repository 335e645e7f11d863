package notify

// Link is exported for testing
var Link = (*Slack).link
