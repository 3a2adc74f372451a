package caselink

// Frame names, element names and selectors for the CaseLink portal. The
// portal is a legacy server-rendered UI; these values are the part of the
// scraper most likely to need updating when the portal changes, so they all
// live here rather than inline in the navigation logic.
const (
	// Frames on the case detail page
	postbackFrame = "postback"
	updateFrame   = "update"

	// Login form element names
	usernameInput = "USERID"
	passwordInput = "PASSWORD"
	loginButton   = "LOGON"

	// Docket search form element name
	docketNumberInput = "P_26_13"

	// Hearing grid: date cells in column 2, description cells in column 3
	gridTableID      = "GRIDTBL_1A"
	gridDateSelector = "#GRIDTBL_1A tbody tr td:nth-child(2) input"
	gridDescSelector = "#GRIDTBL_1A tbody tr td:nth-child(3) input"
	gridRowSelector  = "#GRIDTBL_1A tbody tr"
)
