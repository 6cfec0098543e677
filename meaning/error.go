package meaning

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return e.message
}

var (
	synErrInvalidToken       = newSyntaxError("invalid token")
	synErrNoProductionName   = newSyntaxError("a node must begin with a production name")
	synErrUnclosedVars       = newSyntaxError("unclosed variable list")
	synErrInvalidVar         = newSyntaxError("a variable must be an identifier")
	synErrUnclosedLiteral    = newSyntaxError("unclosed literal")
	synErrInvalidLiteral     = newSyntaxError("a literal must be an identifier, a number, or a quoted string")
	synErrEmptyLiteral       = newSyntaxError("a literal must not be empty")
	synErrUnclosedChildren   = newSyntaxError("unclosed child list")
	synErrEmptyChildren      = newSyntaxError("a child list must contain at least one node")
	synErrUnexpectedTrailing = newSyntaxError("unexpected token after a meaning")
)

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
	semErrUndefinedProduction = newSemanticError("undefined production")
	semErrRootNotStart        = newSemanticError("the root node must be a production of the start symbol")
	semErrChildCount          = newSemanticError("the number of children doesn't match the production")
	semErrChildMismatch       = newSemanticError("a child doesn't match the non-terminal of its parent")
	semErrVarCount            = newSemanticError("the number of variables doesn't match the production")
	semErrVarMismatch         = newSemanticError("the arguments of a child don't match its parent")
	semErrTooManyVars         = newSemanticError("too many variables")
	semErrLiteralMissing      = newSemanticError("a wildcard production needs a literal")
	semErrUnexpectedLiteral   = newSemanticError("only a wildcard production can have a literal")
)
