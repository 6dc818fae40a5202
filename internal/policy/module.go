package policy

// policyModule is the Rego source compiled once at Engine construction. It
// implements the five-step classification algorithm: denylist scan,
// privilege check, allowlist gate, risk classification, auto-approve
// decision — in that order, via an else-chain on the `decision` rule so
// the first matching step always wins.
const policyModule = `
package agentpolicy

risk_rank := {"low": 0, "medium": 1, "high": 2, "critical": 3}
rank_to_risk := {0: "low", 1: "medium", 2: "high", 3: "critical"}

lower_command := lower(input.command)
lower_path := lower(input.path)
lower_target := lower(input.target)

denylist_hit if {
	some p in input.catastrophic_patterns
	contains(lower_command, lower(p))
}

denylist_hit if {
	some p in input.command_denylist
	contains(lower_command, lower(p))
}

denylist_hit if {
	some p in input.command_denylist
	input.path != ""
	contains(lower_path, lower(p))
}

privilege_blocked if {
	not input.allow_privileged_shell
	startswith(trim_space(lower_command), "sudo ")
}

allowlist_nonempty if {
	count(input.command_allowlist) > 0
}

allowlist_matched if {
	some p in input.command_allowlist
	startswith(input.command, p)
}

allowlist_blocked if {
	allowlist_nonempty
	not allowlist_matched
}

sensitive_path_hit if {
	some p in input.restricted_paths
	input.target != ""
	startswith(lower_target, lower(p))
}

sensitive_path_hit if {
	some p in input.restricted_paths
	input.path != ""
	startswith(lower_path, lower(p))
}

destructive_verb_hit if {
	some v in input.delete_verbs
	contains(lower_command, lower(v))
}

destructive_verb_hit if {
	some v in input.permission_verbs
	contains(lower_command, lower(v))
}

privileged_shell_permitted if {
	input.allow_privileged_shell
	startswith(trim_space(lower_command), "sudo ")
}

base_rank := risk_rank[input.intrinsic_risk]

bumped_rank := r if {
	sensitive_path_hit
	r := max([base_rank, risk_rank.high])
} else := r if {
	privileged_shell_permitted
	r := max([base_rank, risk_rank.high])
} else := r if {
	destructive_verb_hit
	r := max([base_rank, risk_rank.medium])
} else := base_rank

effective_risk := rank_to_risk[bumped_rank]

privilege_block_risk := rank_to_risk[max([base_rank, risk_rank.high])]

allowlist_block_risk := rank_to_risk[max([base_rank, risk_rank.medium])]

reasoning_for_risk := "sensitive path target requires elevated scrutiny" if {
	sensitive_path_hit
} else := "privileged shell execution permitted by policy" if {
	privileged_shell_permitted
} else := "destructive or permission-altering verb detected" if {
	destructive_verb_hit
} else := "intrinsic tool risk"

auto_approved if {
	not input.require_approval
	bumped_rank <= risk_rank[input.auto_approve_ceiling]
}

estimated_impact := "files will be permanently deleted" if {
	destructive_verb_hit
} else := "system-wide changes may occur" if {
	privileged_shell_permitted
} else := sprintf("Target: %v", [input.target]) if {
	input.target != ""
} else := sprintf("Target: %v", [input.path]) if {
	input.path != ""
} else := "no side-effect target specified"

decision := {
	"action": "block",
	"risk_level": "critical",
	"reasoning": "matches a denylisted or catastrophic command pattern",
	"estimated_impact": "files will be permanently deleted",
} if {
	denylist_hit
} else := {
	"action": "block",
	"risk_level": privilege_block_risk,
	"reasoning": "privileged shell execution is not permitted by this agent's policy",
	"estimated_impact": "system-wide changes may occur",
} if {
	privilege_blocked
} else := {
	"action": "block",
	"risk_level": allowlist_block_risk,
	"reasoning": "command is not present on the agent's allowlist",
	"estimated_impact": sprintf("Target: %v", [input.target]),
} if {
	allowlist_blocked
} else := {
	"action": "allow",
	"risk_level": effective_risk,
	"reasoning": reasoning_for_risk,
	"estimated_impact": estimated_impact,
} if {
	auto_approved
} else := {
	"action": "ask",
	"risk_level": effective_risk,
	"reasoning": reasoning_for_risk,
	"estimated_impact": estimated_impact,
}
`
