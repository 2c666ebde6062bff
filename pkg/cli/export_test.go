package cli

var PrintTokenStatus = printTokenStatus
