package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoGrammarName           = newSemanticError("name is missing")
	semErrNoStartSymbol           = newSemanticError("start is missing")
	semErrUndefinedStart          = newSemanticError("the start symbol must be the LHS of some production")
	semErrStartWithArgs           = newSemanticError("the start symbol cannot take arguments")
	semErrNoProduction            = newSemanticError("a grammar needs at least one production")
	semErrDuplicateProduction     = newSemanticError("duplicate production")
	semErrDuplicateProductionName = newSemanticError("duplicate production name")
	semErrDuplicateRule           = newSemanticError("duplicate rule")
	semErrDuplicateName           = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	semErrDuplicateArg            = newSemanticError("an LHS cannot have the same variable twice")
	semErrDuplicateType           = newSemanticError("duplicate type")
	semErrTooManyVars             = newSemanticError("a production can have at most 8 variables")
	semErrTooManyTypes            = newSemanticError("a grammar can declare at most 15 types")
	semErrUndefinedNonTerminal    = newSemanticError("undefined non-terminal or arity mismatch")
	semErrUndefinedProduction     = newSemanticError("undefined production")
	semErrUndefinedType           = newSemanticError("undefined type")
	semErrInvalidAC               = newSemanticError("an AC production needs at least two identical non-terminals separated by identical symbols")
	semErrWildcardInNonLeaf       = newSemanticError("a wildcard can appear only in a production without non-terminals")
	semErrMultipleWildcards       = newSemanticError("a production can have at most one wildcard")
	semErrDummyArgs               = newSemanticError("a dummy production must pass its arguments through unchanged")
	semErrDummyCycle              = newSemanticError("dummy productions form a cycle")
	semErrRuleOfDummy             = newSemanticError("a dummy production cannot have rules")
	semErrInvalidLink             = newSemanticError("a link must refer to a non-terminal of the production")
	semErrLinkMismatch            = newSemanticError("a linked symbol must be the same as the non-terminal of the production")
	semErrDuplicateLink           = newSemanticError("a non-terminal of a production can be linked only once")
	semErrUnlinkedChild           = newSemanticError("every non-terminal of a production must be linked")
	semErrGapPosition             = newSemanticError("a gap can appear only between two symbols")
	semErrWildcardMismatch        = newSemanticError("a rule of a wildcard production needs exactly one wildcard of the same class")
	semErrUnexpectedWildcard      = newSemanticError("a rule can contain a wildcard only when its production has the same wildcard")
	semErrUnitCycle               = newSemanticError("unit rules form a cycle")
	semErrDirInvalidName          = newSemanticError("invalid directive name")
	semErrDirInvalidParam         = newSemanticError("invalid parameter")
)
