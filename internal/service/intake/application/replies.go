// internal/service/intake/application/replies.go
package application

import (
	"fmt"
	"strings"

	"boost/internal/service/intake/domain"
)

// 本文件集中构造所有出站回复。文本与动作布局刻意保持确定性，
// 相同的会话状态永远渲染出相同的回复。

func platformMenu(text string, platforms []domain.Platform) Reply {
	actions := make([]Action, 0, len(platforms))
	for _, p := range platforms {
		actions = append(actions, Action{
			Label: capitalize(p.Name),
			ID:    actionPlatformPrefix + p.Name,
		})
	}
	return Reply{Text: text, Actions: actions}
}

func serviceMenu(platform string, services []domain.Service) Reply {
	actions := make([]Action, 0, len(services)+1)
	for _, svc := range services {
		actions = append(actions, Action{Label: svc.DisplayName, ID: actionServicePrefix + svc.ID})
	}
	actions = append(actions, Action{Label: "⬅️ Back", ID: ActionBackPlatforms})
	return Reply{
		Text:    fmt.Sprintf("Platform selected: %s\nPlease select a service:", platform),
		Actions: actions,
	}
}

func targetPrompt(svc *domain.Service) Reply {
	return Reply{
		Text: fmt.Sprintf("Service: %s\n%s\n\nPlease enter your target username (without @):",
			svc.DisplayName, svc.Description),
		Actions: []Action{{Label: "⬅️ Back", ID: ActionBackServices}},
	}
}

func quantityPrompt() Reply {
	return Reply{
		Text:    "Please enter the quantity you want:",
		Actions: []Action{{Label: "⬅️ Back", ID: ActionBackServices}},
	}
}

func commentsPrompt() Reply {
	return Reply{
		Text:    `Please enter your comments, separated by commas (e.g. "Nice pic!, Awesome!, Cool!")`,
		Actions: []Action{{Label: "⬅️ Back", ID: ActionBackServices}},
	}
}

// summaryReply 渲染订单摘要。可编辑字段由服务类型决定：
// comment 类暴露“编辑评论”，其余暴露“编辑数量”；“编辑账号”总是可用。
func summaryReply(d *domain.OrderDraft) Reply {
	var b strings.Builder
	b.WriteString("Order Summary:\n")
	fmt.Fprintf(&b, "Platform: %s\n", d.Platform)
	fmt.Fprintf(&b, "Service: %s\n", d.ServiceName)
	fmt.Fprintf(&b, "Username: @%s\n", d.Target)
	if d.ServiceType == domain.ServiceTypeComment {
		fmt.Fprintf(&b, "Comments: %d\n", len(d.Comments))
	} else {
		fmt.Fprintf(&b, "Quantity: %d\n", d.Quantity)
	}
	fmt.Fprintf(&b, "Base Price: $%.2f\n", d.BasePrice)
	fmt.Fprintf(&b, "Fee: $%.2f\n", d.Fee)
	fmt.Fprintf(&b, "Total: $%.2f", d.TotalPrice)

	editAction := Action{Label: "Edit Quantity", ID: ActionEditQuantity}
	if d.ServiceType == domain.ServiceTypeComment {
		editAction = Action{Label: "Edit Comments", ID: ActionEditComments}
	}
	return Reply{
		Text: b.String(),
		Actions: []Action{
			{Label: "Edit Username", ID: ActionEditUsername},
			editAction,
			{Label: "Confirm ✅", ID: ActionConfirmOrder},
			{Label: "Cancel ❌", ID: ActionCancelOrder},
			{Label: "⬅️ Back", ID: ActionBackServices},
		},
	}
}

func editPrompt(field domain.EditField) Reply {
	var text string
	switch field {
	case domain.EditTarget:
		text = "Please enter the new target username (without @):"
	case domain.EditQuantity:
		text = "Please enter the new quantity:"
	case domain.EditComments:
		text = "Please enter your comments, separated by commas:"
	}
	return Reply{
		Text:    text,
		Actions: []Action{{Label: "⬅️ Back", ID: ActionBackSummary}},
	}
}

// validationReply 把校验错误原样回给用户，并附上与当前提示一致的动作。
func validationReply(msg string, backAction string) Reply {
	return Reply{
		Text:    msg,
		Actions: []Action{{Label: "⬅️ Back", ID: backAction}},
	}
}

func confirmedReply(orderID string, total float64) Reply {
	return Reply{
		Text: fmt.Sprintf("✅ Order confirmed!\nOrder ID: %s\nTotal: $%.2f\nWe will start processing shortly.",
			orderID, total),
		Actions: []Action{{Label: "New Order", ID: ActionStart}},
	}
}

func cancelledReply() Reply {
	return Reply{
		Text:    "Order cancelled. You can start a new one.",
		Actions: []Action{{Label: "Start", ID: ActionStart}},
	}
}

func restartReply() Reply {
	return Reply{
		Text:    "Something went wrong with this conversation. Please start again.",
		Actions: []Action{{Label: "Start", ID: ActionStart}},
	}
}

func collaboratorFailureReply() Reply {
	return Reply{
		Text: "Something went wrong on our side. Please try again in a moment.",
	}
}

func pricingUnavailableReply(backAction string) Reply {
	return Reply{
		Text:    "Pricing is unavailable for this request. Try a different quantity or go back.",
		Actions: []Action{{Label: "⬅️ Back", ID: backAction}},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
