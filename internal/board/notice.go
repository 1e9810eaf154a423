package board

// Variant selects how a notice is rendered.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notice is a transient, user-facing notification.
type Notice struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Variant     Variant `json:"variant"`
}

// operation describes a user-visible data operation: its name for logs and
// metrics, and the notices shown when it succeeds or fails. An empty okTitle
// means success is silent.
type operation struct {
	name      string
	okTitle   string
	okText    string
	failTitle string
}

func (op operation) success() (Notice, bool) {
	if op.okTitle == "" {
		return Notice{}, false
	}
	return Notice{Title: op.okTitle, Description: op.okText, Variant: VariantDefault}, true
}

func (op operation) failure() Notice {
	return Notice{Title: op.failTitle, Description: "Please try again later.", Variant: VariantDestructive}
}

var (
	opListBoards  = operation{name: "ListBoards", failTitle: "Error fetching boards"}
	opGetBoard    = operation{name: "GetBoard", failTitle: "Error fetching board details"}
	opCreateBoard = operation{
		name:      "CreateBoard",
		okTitle:   "Board created",
		okText:    "Your new board has been created successfully.",
		failTitle: "Error creating board",
	}
	opUpdateBoard = operation{
		name:      "UpdateBoard",
		okTitle:   "Board updated",
		okText:    "Your board has been updated successfully.",
		failTitle: "Error updating board",
	}
	opDeleteBoard = operation{
		name:      "DeleteBoard",
		okTitle:   "Board deleted",
		okText:    "Your board has been deleted successfully.",
		failTitle: "Error deleting board",
	}
	opCreateColumn = operation{
		name:      "CreateColumn",
		okTitle:   "Column created",
		okText:    "Your new column has been created successfully.",
		failTitle: "Error creating column",
	}
	opUpdateColumn = operation{
		name:      "UpdateColumn",
		okTitle:   "Column updated",
		okText:    "Your column has been updated successfully.",
		failTitle: "Error updating column",
	}
	opDeleteColumn = operation{
		name:      "DeleteColumn",
		okTitle:   "Column deleted",
		okText:    "Your column has been deleted successfully.",
		failTitle: "Error deleting column",
	}
	opCreateCard = operation{
		name:      "CreateCard",
		okTitle:   "Card created",
		okText:    "Your new card has been created successfully.",
		failTitle: "Error creating card",
	}
	opUpdateCard = operation{
		name:      "UpdateCard",
		okTitle:   "Card updated",
		okText:    "Your card has been updated successfully.",
		failTitle: "Error updating card",
	}
	opDeleteCard = operation{
		name:      "DeleteCard",
		okTitle:   "Card deleted",
		okText:    "Your card has been deleted successfully.",
		failTitle: "Error deleting card",
	}
	opCreateTag = operation{
		name:      "CreateTag",
		okTitle:   "Tag created",
		okText:    "Your new tag has been created successfully.",
		failTitle: "Error creating tag",
	}
	opUpdateTag = operation{
		name:      "UpdateTag",
		okTitle:   "Tag updated",
		okText:    "Your tag has been updated successfully.",
		failTitle: "Error updating tag",
	}
	opDeleteTag = operation{
		name:      "DeleteTag",
		okTitle:   "Tag deleted",
		okText:    "Your tag has been deleted successfully.",
		failTitle: "Error deleting tag",
	}
	opAddTag    = operation{name: "AddTagToCard", failTitle: "Error adding tag"}
	opRemoveTag = operation{name: "RemoveTagFromCard", failTitle: "Error removing tag"}

	opReorderColumns = operation{name: "ReorderColumns", failTitle: "Error updating columns"}
	opReorderCards   = operation{name: "ReorderCards", failTitle: "Error updating cards"}
	opMoveCard       = operation{name: "MoveCard", failTitle: "Error moving card"}
)
